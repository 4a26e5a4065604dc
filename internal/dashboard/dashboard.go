package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go-employee/internal/client"

	"github.com/google/uuid"
)

const (
	PageSize      = 8
	DebounceDelay = 250 * time.Millisecond
	ToastTTL      = 3 * time.Second

	MsgFixFields   = "Please fix the highlighted fields."
	MsgCreated     = "Employee created."
	MsgUpdated     = "Employee updated."
	MsgDeleted     = "Employee deleted."
	MsgSaveFailed  = "Save failed."
	MsgDelFailed   = "Delete failed."
	MsgLoadFailed  = "Failed to load employees."
	MsgConfirmDrop = "Delete this employee? This cannot be undone."
)

// ErrInvalidForm is returned by Submit when the form fails validation.
var ErrInvalidForm = errors.New("dashboard: invalid form")

// API is the part of the employees client the dashboard drives.
type API interface {
	List(ctx context.Context) ([]client.Employee, error)
	Search(ctx context.Context, q string) ([]client.Employee, error)
	Create(ctx context.Context, in client.EmployeeInput) (client.Employee, error)
	Update(ctx context.Context, id string, in client.EmployeeInput) (client.Employee, error)
	Delete(ctx context.Context, id string) (string, error)
}

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

type Toast struct {
	ID      string
	Kind    ToastKind
	Message string
}

// View is a consistent copy of the dashboard state for rendering.
type View struct {
	Rows       []client.Employee
	Total      int
	Page       int
	TotalPages int
	Loading    bool
	Error      string
	Search     string
	Sort       Sort
	Form       Form
	FormErrors FieldErrors
	Editing    bool
	EditingID  string
	Toast      *Toast
}

type Option func(*Dashboard)

// WithOnChange registers fn to run after state changes that happen off the
// caller's goroutine: finished fetches and expired toasts.
func WithOnChange(fn func()) Option {
	return func(d *Dashboard) { d.onChange = fn }
}

func WithDebounce(delay time.Duration) Option {
	return func(d *Dashboard) { d.debounce = delay }
}

func WithToastTTL(ttl time.Duration) Option {
	return func(d *Dashboard) { d.toastTTL = ttl }
}

// Dashboard is the employee directory screen state: the loaded records,
// search, sort, paging, the create/edit form and the current toast.
type Dashboard struct {
	api      API
	onChange func()
	debounce time.Duration
	toastTTL time.Duration

	mu         sync.Mutex
	employees  []client.Employee
	loading    bool
	err        string
	search     string
	sort       Sort
	page       int
	form       Form
	formErrors FieldErrors
	editing    bool
	editingID  string
	toast      *Toast

	fetchGen    uint64
	fetchTimer  *time.Timer
	fetchCancel context.CancelFunc
	toastTimer  *time.Timer
}

func New(api API, opts ...Option) *Dashboard {
	d := &Dashboard{
		api:        api,
		debounce:   DebounceDelay,
		toastTTL:   ToastTTL,
		sort:       DefaultSort,
		page:       1,
		formErrors: FieldErrors{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dashboard) notify() {
	if d.onChange != nil {
		d.onChange()
	}
}

// Load schedules a fetch for the current search text.
func (d *Dashboard) Load() {
	d.mu.Lock()
	text := d.search
	d.mu.Unlock()
	d.SetSearch(text)
}

// SetSearch records the search text and schedules a fetch once the text has
// been stable for the debounce delay. Any pending or in-flight fetch is
// cancelled and its result dropped.
func (d *Dashboard) SetSearch(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.search = text
	d.cancelFetchLocked()

	d.fetchGen++
	gen := d.fetchGen
	ctx, cancel := context.WithCancel(context.Background())
	d.fetchCancel = cancel
	d.fetchTimer = time.AfterFunc(d.debounce, func() {
		d.fetch(ctx, gen, text)
	})
}

func (d *Dashboard) cancelFetchLocked() {
	if d.fetchTimer != nil {
		d.fetchTimer.Stop()
		d.fetchTimer = nil
	}
	if d.fetchCancel != nil {
		d.fetchCancel()
		d.fetchCancel = nil
	}
}

func (d *Dashboard) fetch(ctx context.Context, gen uint64, text string) {
	d.mu.Lock()
	if gen != d.fetchGen {
		d.mu.Unlock()
		return
	}
	d.loading = true
	d.err = ""
	d.mu.Unlock()
	d.notify()

	var (
		data []client.Employee
		err  error
	)
	if q := strings.TrimSpace(text); q != "" {
		data, err = d.api.Search(ctx, q)
	} else {
		data, err = d.api.List(ctx)
	}

	d.mu.Lock()
	if gen != d.fetchGen || client.IsCanceled(err) {
		d.mu.Unlock()
		return
	}
	d.loading = false
	if err != nil {
		d.err = err.Error()
		if d.err == "" {
			d.err = MsgLoadFailed
		}
	} else {
		if data == nil {
			data = []client.Employee{}
		}
		d.employees = data
		d.page = 1
	}
	d.mu.Unlock()
	d.notify()
}

// ToggleSort applies a click on a column header.
func (d *Dashboard) ToggleSort(key SortKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sort = d.sort.Toggle(key)
}

func (d *Dashboard) SetPage(page int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.page = clampPage(page, totalPages(len(d.employees)))
}

func (d *Dashboard) NextPage() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.page = clampPage(d.currentPageLocked()+1, totalPages(len(d.employees)))
}

func (d *Dashboard) PrevPage() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.page = clampPage(d.currentPageLocked()-1, totalPages(len(d.employees)))
}

func (d *Dashboard) currentPageLocked() int {
	return clampPage(d.page, totalPages(len(d.employees)))
}

// SetField edits one form field and clears its error.
func (d *Dashboard) SetField(field, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form.Set(field, value)
	delete(d.formErrors, field)
}

// Edit loads e into the form and switches to edit mode.
func (d *Dashboard) Edit(e client.Employee) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.editing = true
	d.editingID = e.ID
	d.form = FormFrom(e)
	d.formErrors = FieldErrors{}
}

// ResetForm clears the form and leaves edit mode.
func (d *Dashboard) ResetForm() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetFormLocked()
}

func (d *Dashboard) resetFormLocked() {
	d.editing = false
	d.editingID = ""
	d.form = Form{}
	d.formErrors = FieldErrors{}
}

// Submit validates the form and creates or updates the record. A created
// record is prepended to the list; an updated one is replaced in place.
func (d *Dashboard) Submit(ctx context.Context) error {
	d.mu.Lock()
	form := d.form
	editing, id := d.editing, d.editingID
	errs := Validate(form)
	d.formErrors = errs
	d.mu.Unlock()

	if len(errs) > 0 {
		d.PushToast(ToastError, MsgFixFields)
		return ErrInvalidForm
	}

	payload := Normalize(form)
	if editing && id != "" {
		updated, err := d.api.Update(ctx, id, payload)
		if err != nil {
			d.PushToast(ToastError, errorMessage(err, MsgSaveFailed))
			return err
		}
		d.mu.Lock()
		for i := range d.employees {
			if d.employees[i].ID == id {
				d.employees[i] = updated
			}
		}
		d.resetFormLocked()
		d.mu.Unlock()
		d.PushToast(ToastSuccess, MsgUpdated)
		return nil
	}

	created, err := d.api.Create(ctx, payload)
	if err != nil {
		d.PushToast(ToastError, errorMessage(err, MsgSaveFailed))
		return err
	}
	d.mu.Lock()
	d.employees = append([]client.Employee{created}, d.employees...)
	d.resetFormLocked()
	d.mu.Unlock()
	d.PushToast(ToastSuccess, MsgCreated)
	return nil
}

// Delete removes the record after confirm returns true. The list is updated
// locally without a refetch.
func (d *Dashboard) Delete(ctx context.Context, id string, confirm func(prompt string) bool) error {
	if confirm == nil || !confirm(MsgConfirmDrop) {
		return nil
	}

	if _, err := d.api.Delete(ctx, id); err != nil {
		d.PushToast(ToastError, errorMessage(err, MsgDelFailed))
		return err
	}

	d.mu.Lock()
	kept := make([]client.Employee, 0, len(d.employees))
	for _, e := range d.employees {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	d.employees = kept
	d.mu.Unlock()
	d.PushToast(ToastSuccess, MsgDeleted)
	return nil
}

// PushToast shows message, replacing any visible toast. It disappears after
// the toast TTL unless replaced first.
func (d *Dashboard) PushToast(kind ToastKind, message string) {
	t := &Toast{ID: uuid.NewString(), Kind: kind, Message: message}

	d.mu.Lock()
	d.toast = t
	if d.toastTimer != nil {
		d.toastTimer.Stop()
	}
	d.toastTimer = time.AfterFunc(d.toastTTL, func() {
		if d.DismissToast(t.ID) {
			d.notify()
		}
	})
	d.mu.Unlock()
}

// DismissToast hides the toast with id. It reports whether that toast was
// still showing.
func (d *Dashboard) DismissToast(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.toast == nil || d.toast.ID != id {
		return false
	}
	d.toast = nil
	return true
}

// Snapshot returns the state to render, with the list sorted and cut to the
// current page.
func (d *Dashboard) Snapshot() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	sorted := d.sort.Apply(d.employees)
	pages := totalPages(len(sorted))
	page := clampPage(d.page, pages)
	start := (page - 1) * PageSize
	end := min(start+PageSize, len(sorted))

	errs := make(FieldErrors, len(d.formErrors))
	for k, v := range d.formErrors {
		errs[k] = v
	}
	var toast *Toast
	if d.toast != nil {
		cp := *d.toast
		toast = &cp
	}

	return View{
		Rows:       sorted[start:end],
		Total:      len(sorted),
		Page:       page,
		TotalPages: pages,
		Loading:    d.loading,
		Error:      d.err,
		Search:     d.search,
		Sort:       d.sort,
		Form:       d.form,
		FormErrors: errs,
		Editing:    d.editing,
		EditingID:  d.editingID,
		Toast:      toast,
	}
}

// Close stops pending timers and cancels any in-flight fetch.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetchGen++
	d.cancelFetchLocked()
	if d.toastTimer != nil {
		d.toastTimer.Stop()
	}
}

func totalPages(n int) int {
	return max(1, (n+PageSize-1)/PageSize)
}

func clampPage(page, pages int) int {
	return min(max(page, 1), pages)
}

// errorMessage prefers the server's details, then the error text.
func errorMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Details != "" {
			return apiErr.Details
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
