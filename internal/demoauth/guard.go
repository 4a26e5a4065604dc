package demoauth

const (
	PathHome      = "/"
	PathLogin     = "/login"
	PathEmployees = "/employees"
	PathLogout    = "/logout"
)

type Route int

const (
	RouteNotFound Route = iota
	RouteHome
	RouteLogin
	RouteEmployees
)

func (r Route) String() string {
	switch r {
	case RouteHome:
		return "home"
	case RouteLogin:
		return "login"
	case RouteEmployees:
		return "employees"
	default:
		return "not_found"
	}
}

// Guard resolves dashboard navigation. Unauthenticated visits to a
// protected path land on the login page, and the path is remembered so a
// successful login can return there.
type Guard struct {
	store *Store
	from  string
}

func NewGuard(store *Store) *Guard {
	return &Guard{store: store}
}

// Navigate returns the page to show for path and the path actually shown.
func (g *Guard) Navigate(path string) (Route, string) {
	switch path {
	case PathHome:
		return RouteHome, PathHome
	case PathLogin:
		return RouteLogin, PathLogin
	case PathLogout:
		return RouteHome, PathHome
	case PathEmployees:
		if !g.store.IsAuthed() {
			g.from = path
			return RouteLogin, PathLogin
		}
		return RouteEmployees, PathEmployees
	default:
		return RouteNotFound, path
	}
}

// Login stores the demo token and returns where to go next: the remembered
// protected path, or the employees page.
func (g *Guard) Login(email, password string) (string, error) {
	if err := g.store.Login(email, password); err != nil {
		return "", err
	}
	next := g.from
	if next == "" {
		next = PathEmployees
	}
	g.from = ""
	return next, nil
}

// Logout drops the token and returns the logout path.
func (g *Guard) Logout() (string, error) {
	if err := g.store.Logout(); err != nil {
		return "", err
	}
	return PathLogout, nil
}

func (g *Guard) IsAuthed() bool {
	return g.store.IsAuthed()
}
