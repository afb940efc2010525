package router

// Route names used by the guard and the HTTP pipeline
const (
	RouteHome     = "Home"
	RouteLogin    = "Login"
	RouteRegister = "Register"
	RouteProfile  = "Profile"

	RouteJobList     = "JobList"
	RouteJobUpload   = "JobUpload"
	RouteJobDetail   = "JobDetail"
	RouteJobAnalysis = "JobAnalysis"

	RouteResumeList   = "ResumeList"
	RouteResumeUpload = "ResumeUpload"
	RouteResumeSearch = "ResumeSearch"
	RouteResumeDetail = "ResumeDetail"

	RouteMatchList   = "MatchList"
	RouteMatchBest   = "MatchBest"
	RouteMatchDetail = "MatchDetail"

	RoutePlanList       = "PlanList"
	RoutePlanGeneration = "PlanGeneration"
	RoutePlanDetail     = "PlanDetail"

	RouteAnalyticsDashboard = "AnalyticsDashboard"
	RouteRecruitmentFunnel  = "RecruitmentFunnel"
	RouteChannelAnalysis    = "ChannelAnalysis"

	RouteUserAdmin       = "UserAdmin"
	RouteUserAdminDetail = "UserAdminDetail"
)

// Route is one entry of the route table. Path is a chi pattern.
type Route struct {
	Name          string
	Path          string
	RequiresAuth  bool
	RequiresAdmin bool
}

// DefaultRoutes is the route table of the CLI
var DefaultRoutes = []Route{
	{Name: RouteHome, Path: "/", RequiresAuth: true},
	{Name: RouteLogin, Path: "/login"},
	{Name: RouteRegister, Path: "/register"},
	{Name: RouteProfile, Path: "/profile", RequiresAuth: true},

	{Name: RouteJobList, Path: "/jobs", RequiresAuth: true},
	{Name: RouteJobUpload, Path: "/jobs/upload", RequiresAuth: true},
	{Name: RouteJobAnalysis, Path: "/jobs/analysis", RequiresAuth: true},
	{Name: RouteJobDetail, Path: "/jobs/{id}", RequiresAuth: true},

	{Name: RouteResumeList, Path: "/resumes", RequiresAuth: true},
	{Name: RouteResumeUpload, Path: "/resumes/upload", RequiresAuth: true},
	{Name: RouteResumeSearch, Path: "/resumes/search", RequiresAuth: true},
	{Name: RouteResumeDetail, Path: "/resumes/{id}", RequiresAuth: true},

	{Name: RouteMatchList, Path: "/matches", RequiresAuth: true},
	{Name: RouteMatchBest, Path: "/matches/best", RequiresAuth: true},
	{Name: RouteMatchDetail, Path: "/matches/{id}", RequiresAuth: true},

	{Name: RoutePlanList, Path: "/plans", RequiresAuth: true},
	{Name: RoutePlanGeneration, Path: "/plans/generate", RequiresAuth: true},
	{Name: RoutePlanDetail, Path: "/plans/{id}", RequiresAuth: true},

	{Name: RouteAnalyticsDashboard, Path: "/analytics", RequiresAuth: true},
	{Name: RouteRecruitmentFunnel, Path: "/analytics/funnel", RequiresAuth: true},
	{Name: RouteChannelAnalysis, Path: "/analytics/channels", RequiresAuth: true},

	{Name: RouteUserAdmin, Path: "/admin/users", RequiresAuth: true, RequiresAdmin: true},
	{Name: RouteUserAdminDetail, Path: "/admin/users/{id}", RequiresAuth: true, RequiresAdmin: true},
}
