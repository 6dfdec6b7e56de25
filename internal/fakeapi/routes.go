package fakeapi

// Route path constants, mounted under the server's prefix (default /api/v1).
const (
	RouteAuthRegister = "/auth/register"
	RouteAuthLogin    = "/auth/login"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthRefresh  = "/auth/refresh"

	RouteURLsAnalyze    = "/urls/analyze"
	RouteURLsHistory    = "/urls/history"
	RouteURLsHistoryAll = "/urls/history/all"
)

func (s *Server) initRoutes() {
	public := s.APIMiddleware()
	protected := append(s.APIMiddleware(), s.RequireBearer)

	s.RegisterRouteFunc("POST "+s.prefix+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), public...))
	s.RegisterRouteFunc("POST "+s.prefix+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), public...))
	s.RegisterRouteFunc("POST "+s.prefix+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), public...))
	s.RegisterRouteFunc("POST "+s.prefix+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), public...))

	s.RegisterRouteFunc("POST "+s.prefix+RouteURLsAnalyze, ChainMiddleware(s.AnalyzeHandler(), protected...))
	s.RegisterRouteFunc("GET "+s.prefix+RouteURLsHistory, ChainMiddleware(s.HistoryHandler(false), protected...))
	s.RegisterRouteFunc("GET "+s.prefix+RouteURLsHistoryAll, ChainMiddleware(s.HistoryHandler(true), public...))

	s.RegisterRouteFunc("OPTIONS "+s.prefix+"/", ChainMiddleware(s.PreflightHandler(), public...))
}
