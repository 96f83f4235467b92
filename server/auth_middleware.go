package server

import "net/http"

// RequireAuthenticated serves the private pages only while the session store
// is authenticated and sends everyone else to the sign-in page.
func (s *Server) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.deps.Sessions.IsAuthenticated() {
			http.Redirect(w, r, RouteSignIn, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
