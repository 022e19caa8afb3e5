package router

import (
	"encoding/json"
	"strings"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/pprofhandler"

	apiHandler "github.com/amankumar-in/univance/api/handler"
	"github.com/amankumar-in/univance/api/transport"
	"github.com/amankumar-in/univance/internal/metrics"
	"github.com/amankumar-in/univance/internal/middleware"
)

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Options holds the routing settings every service shares.
type Options struct {
	// Prefix is the service's API root, e.g. /api/tasks.
	Prefix        string
	Health        *apiHandler.HealthHandler
	Auth          Middleware
	EnableMetrics bool
	EnablePprof   bool
	Production    bool
	UploadsDir    string
}

// newBase mounts health, metrics and uploads.
func newBase(opts Options) *router.Router {
	r := router.New()
	r.NotFound = unrouted(fasthttp.StatusNotFound, "Route not found")
	r.MethodNotAllowed = unrouted(fasthttp.StatusMethodNotAllowed, "Method not allowed")
	r.GET("/health", opts.Health.Check)
	if opts.EnableMetrics {
		r.GET("/metrics", metrics.Handler())
	}
	if opts.EnablePprof {
		r.GET("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}
	if opts.UploadsDir != "" {
		serveUploads(r, opts.Prefix+"/uploads", opts.UploadsDir)
		if !opts.Production {
			serveUploads(r, "/uploads", opts.UploadsDir)
		}
	}
	return r
}

// unrouted answers with the error envelope instead of the router's plain-text default.
func unrouted(status int, message string) fasthttp.RequestHandler {
	body, _ := json.Marshal(transport.NewError(message, ""))
	return func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(status)
		ctx.SetContentType("application/json")
		ctx.SetBody(body)
	}
}

func serveUploads(r *router.Router, mount, dir string) {
	fs := &fasthttp.FS{
		Root:               dir,
		PathRewrite:        fasthttp.NewPathSlashesStripper(strings.Count(mount, "/")),
		AcceptByteRange:    true,
		GenerateIndexPages: false,
	}
	r.GET(mount+"/{filepath:*}", fs.NewRequestHandler())
}

// Wrap applies the middleware shared by every route.
func Wrap(r *router.Router) fasthttp.RequestHandler {
	return metrics.Instrument(middleware.CORS(r.Handler))
}

type TaskHandlers struct {
	Task     *apiHandler.TaskHandler
	Category *apiHandler.CategoryHandler
}

func NewTaskRouter(h TaskHandlers, opts Options) *router.Router {
	r := newBase(opts)
	auth := opts.Auth

	p := opts.Prefix
	r.GET(p, auth(h.Task.GetTasks))
	r.POST(p, auth(h.Task.CreateTask))
	r.GET(p+"/statistics", auth(h.Task.Statistics))
	r.GET(p+"/students/{studentId}/summary", auth(h.Task.StudentSummary))
	r.POST(p+"/visibility", auth(h.Task.ToggleVisibility))

	r.GET(p+"/categories", auth(h.Category.List))
	r.POST(p+"/categories", auth(h.Category.Create))
	r.POST(p+"/categories/defaults", auth(h.Category.CreateDefaults))
	r.GET(p+"/categories/context/{context}", auth(h.Category.ForContext))
	r.GET(p+"/categories/{id}", auth(h.Category.Get))
	r.PUT(p+"/categories/{id}", auth(h.Category.Update))
	r.DELETE(p+"/categories/{id}", auth(h.Category.Delete))

	r.GET(p+"/{id}", auth(h.Task.GetTask))
	r.PUT(p+"/{id}", auth(h.Task.UpdateTask))
	r.DELETE(p+"/{id}", auth(h.Task.DeleteTask))
	r.POST(p+"/{id}/complete", auth(h.Task.CompleteTask))
	r.POST(p+"/{id}/review", auth(h.Task.ReviewTask))
	r.POST(p+"/{id}/comments", auth(h.Task.AddComment))
	r.POST(p+"/{id}/next-instance", auth(h.Task.GenerateNextInstance))

	return r
}

type UserHandlers struct {
	Profile      *apiHandler.ProfileHandler
	Relationship *apiHandler.RelationshipHandler
}

func NewUserRouter(h UserHandlers, opts Options) *router.Router {
	r := newBase(opts)
	auth := opts.Auth

	p := opts.Prefix
	r.GET(p+"/me", auth(h.Profile.GetMe))
	r.PUT(p+"/me", auth(h.Profile.UpdateMe))

	r.POST(p+"/students/profile", auth(h.Profile.CreateStudentProfile))
	r.GET(p+"/students/me", auth(h.Profile.MyStudentProfile))
	r.POST(p+"/students/link/parent", auth(h.Profile.LinkWithParent))
	r.POST(p+"/students/link/school", auth(h.Profile.LinkWithSchool))
	r.GET(p+"/students/parent-requests", auth(h.Profile.ParentRequests))
	r.POST(p+"/students/parent-requests/{requestId}", auth(h.Profile.RespondParentRequest))
	r.GET(p+"/students/user/{userId}", auth(h.Profile.StudentByUserID))
	r.GET(p+"/students/{id}", auth(h.Profile.StudentByID))
	r.PUT(p+"/students/{id}", auth(h.Profile.UpdateStudentProfile))
	r.PUT(p+"/students/{id}/points-account", auth(h.Profile.UpdatePointsAccount))
	r.GET(p+"/students/{id}/level", auth(h.Profile.StudentLevel))
	r.GET(p+"/students/{id}/badges", auth(h.Profile.StudentBadges))
	r.DELETE(p+"/students/{id}/parents/{parentId}", auth(h.Profile.UnlinkFromParent))
	r.DELETE(p+"/students/{id}/school", auth(h.Profile.UnlinkFromSchool))

	r.POST(p+"/parents/profile", auth(h.Relationship.CreateParentProfile))
	r.GET(p+"/parents/me", auth(h.Relationship.MyParentProfile))
	r.POST(p+"/parents/link-requests", auth(h.Relationship.RequestStudentLink))

	r.POST(p+"/teachers/profile", auth(h.Relationship.CreateTeacherProfile))
	r.GET(p+"/teachers/me", auth(h.Relationship.MyTeacherProfile))
	r.GET(p+"/teachers/{id}", auth(h.Relationship.TeacherByID))
	r.PUT(p+"/teachers/{id}/subjects", auth(h.Relationship.UpdateSubjects))
	r.GET(p+"/teachers/{id}/classes", auth(h.Relationship.TeacherClasses))

	r.POST(p+"/schools", auth(h.Relationship.CreateSchool))
	r.GET(p+"/schools/{id}", auth(h.Relationship.School))
	r.POST(p+"/classes", auth(h.Relationship.CreateClass))
	r.GET(p+"/classes/{id}", auth(h.Relationship.Class))

	return r
}

func NewRewardsRouter(h *apiHandler.RewardHandler, opts Options) *router.Router {
	r := newBase(opts)
	auth := opts.Auth

	p := opts.Prefix
	r.GET(p, auth(h.List))
	r.POST(p, auth(h.Create))

	r.GET(p+"/categories", auth(h.ListCategories))
	r.POST(p+"/categories", auth(h.CreateCategory))
	r.PUT(p+"/categories/{id}", auth(h.UpdateCategory))
	r.DELETE(p+"/categories/{id}", auth(h.DeleteCategory))

	r.GET(p+"/redemptions", auth(h.ListRedemptions))
	r.POST(p+"/redemptions/{id}/review", auth(h.ReviewRedemption))
	r.POST(p+"/redemptions/{id}/cancel", auth(h.CancelRedemption))

	r.GET(p+"/{id}", auth(h.Get))
	r.PUT(p+"/{id}", auth(h.Update))
	r.DELETE(p+"/{id}", auth(h.Delete))
	r.PUT(p+"/{id}/visibility", auth(h.ToggleVisibility))
	r.POST(p+"/{id}/wishlist", auth(h.AddToWishlist))
	r.DELETE(p+"/{id}/wishlist", auth(h.RemoveFromWishlist))
	r.POST(p+"/{id}/redeem", auth(h.Redeem))

	return r
}
