package router

import (
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/ledgerlight/backend/internal/controllers/healthz"
	v4 "github.com/ledgerlight/backend/internal/controllers/v4"
	"github.com/ledgerlight/backend/internal/httputil"
	"github.com/ledgerlight/backend/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// This is set at build time, see Makefile.
var version = "0.0.0"

// Config sets up the router with all middlewares.
func Config(url *url.URL) (*gin.Engine, func(), error) {
	// Set up the router and middlewares
	r := gin.New()

	// Don’t process X-Forwarded-For header as we do not do anything with
	// client IPs
	r.ForwardedByClientIP = false

	// Send a HTTP 405 (Method not allowed) for all paths where there is
	// a handler, but not for the specific method used
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(URLMiddleware(url))
	r.Use(MetricsMiddleware())
	r.Use(logger.SetLogger(
		logger.WithDefaultLevel(zerolog.InfoLevel),
		logger.WithClientErrorLevel(zerolog.InfoLevel),
		logger.WithServerErrorLevel(zerolog.ErrorLevel),
		logger.WithLogger(func(c *gin.Context, logger zerolog.Logger) zerolog.Logger {
			return logger.With().
				Str("request-id", requestid.Get(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Int("size", c.Writer.Size()).
				Str("user-agent", c.Request.UserAgent()).
				Logger()
		})))

	// CORS settings
	allowOrigins, ok := os.LookupEnv("CORS_ALLOW_ORIGINS")
	if ok {
		log.Debug().Str("CORS Allowed Origins", allowOrigins).Msg("Router")

		r.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Fields(allowOrigins),
			AllowMethods:     []string{"OPTIONS", "GET", "POST", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	// Disable the gin debug route printing as it clutters logs (and test logs)
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, numHandlers int) {}

	// Don’t trust any proxy. We do not process any client IPs,
	// therefore we don’t need to trust anyone here.
	_ = r.SetTrustedProxies([]string{})

	log.Debug().Str("API Base URL", url.String()).Str("Host", url.Host).Str("Path", url.Path).Msg("Router")
	log.Info().Str("version", version).Msg("Router")

	if err := registerPrometheusMetrics(); err != nil {
		return nil, nil, err
	}

	teardown := func() {
		unregisterPrometheusMetrics()
	}

	return r, teardown, nil
}

// AttachRoutes attaches the API routes to the router group that is passed in.
// Separating this from Config() allows us to attach the API to different
// paths for different use cases.
func AttachRoutes(group *gin.RouterGroup) {
	group.GET("", GetRoot)
	group.OPTIONS("", OptionsRoot)
	group.GET("/version", GetVersion)
	group.OPTIONS("/version", OptionsVersion)

	group.GET("/healthz", healthz.Get)
	group.OPTIONS("/healthz", healthz.Options)

	group.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// pprof performance profiles
	enablePprof, ok := os.LookupEnv("ENABLE_PPROF")
	if ok && enablePprof == "true" {
		pprof.RouteRegister(group, "debug/pprof")
	}

	// API v4 setup
	v4Group := group.Group("/v4")
	{
		v4Group.GET("", GetV4)
		v4Group.DELETE("", v4.Cleanup)
		v4Group.OPTIONS("", OptionsV4)
	}

	v4.RegisterLabelRoutes(v4Group.Group("/labels"))
	v4.RegisterLabelRuleRoutes(v4Group.Group("/label-rules"))
	v4.RegisterTransactionRoutes(v4Group.Group("/transactions"))
	v4.RegisterBudgetRoutes(v4Group.Group("/budgets"))
	v4.RegisterRecurringTransactionRoutes(v4Group.Group("/recurring-transactions"))
	v4.RegisterInvoiceRoutes(v4Group.Group("/invoices"))
	v4.RegisterMaterializationRoutes(v4Group.Group("/materializations"))
}

type RootResponse struct {
	Links RootLinks `json:"links"`
}

type RootLinks struct {
	Healthz string `json:"healthz" example:"https://example.com/api/healthz"` // Check API health
	Version string `json:"version" example:"https://example.com/api/version"` // Get API version
	Metrics string `json:"metrics" example:"https://example.com/api/metrics"` // Prometheus metrics
	V4      string `json:"v4" example:"https://example.com/api/v4"`           // List endpoints for v4
}

// @Summary		API root
// @Description	Entrypoint for the API, listing all endpoints
// @Tags			General
// @Success		200	{object}	RootResponse
// @Router			/ [get]
func GetRoot(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, RootResponse{
		Links: RootLinks{
			Healthz: url + "/healthz",
			Version: url + "/version",
			Metrics: url + "/metrics",
			V4:      url + "/v4",
		},
	})
}

type VersionResponse struct {
	Data VersionObject `json:"data"`
}

type VersionObject struct {
	Version string `json:"version" example:"1.1.0"` // the running version of the backend
}

// @Summary		API version
// @Description	Returns the software version of the API
// @Tags			General
// @Success		200	{object}	VersionResponse
// @Router			/version [get]
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse{
		Data: VersionObject{
			Version: version,
		},
	})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			General
// @Success		204
// @Router			/ [options]
func OptionsRoot(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			General
// @Success		204
// @Router			/version [options]
func OptionsVersion(c *gin.Context) {
	httputil.OptionsGet(c)
}

type V4Response struct {
	Links V4Links `json:"links"`
}

type V4Links struct {
	Labels                string `json:"labels" example:"https://example.com/api/v4/labels"`                                // URL of the label list endpoint
	LabelRules            string `json:"labelRules" example:"https://example.com/api/v4/label-rules"`                       // URL of the label rule list endpoint
	Transactions          string `json:"transactions" example:"https://example.com/api/v4/transactions"`                    // URL of the transaction list endpoint
	Budgets               string `json:"budgets" example:"https://example.com/api/v4/budgets"`                              // URL of the budget list endpoint
	RecurringTransactions string `json:"recurringTransactions" example:"https://example.com/api/v4/recurring-transactions"` // URL of the recurring transaction list endpoint
	Invoices              string `json:"invoices" example:"https://example.com/api/v4/invoices"`                            // URL of the invoice list endpoint
	Materializations      string `json:"materializations" example:"https://example.com/api/v4/materializations"`            // URL of the sweep endpoint
}

// @Summary		v4 API
// @Description	Returns general information about the v4 API
// @Tags			v4
// @Success		200	{object}	V4Response
// @Router			/v4 [get]
func GetV4(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL)) + "/v4"

	c.JSON(http.StatusOK, V4Response{
		Links: V4Links{
			Labels:                url + "/labels",
			LabelRules:            url + "/label-rules",
			Transactions:          url + "/transactions",
			Budgets:               url + "/budgets",
			RecurringTransactions: url + "/recurring-transactions",
			Invoices:              url + "/invoices",
			Materializations:      url + "/materializations",
		},
	})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			v4
// @Success		204
// @Router			/v4 [options]
func OptionsV4(c *gin.Context) {
	c.Header("allow", "OPTIONS, GET, DELETE")
	c.Status(http.StatusNoContent)
}
