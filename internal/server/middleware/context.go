package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/config"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/agent"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/network"
)

// AppUser is the authenticated caller, either the master key holder or
// a JWT subject with its granted scopes.
type AppUser struct {
	Subject string
	Scopes  []string
}

// App bundles everything a handler needs. It is built once at startup
// and shared across requests; every member is safe for concurrent use.
type App struct {
	DBConn       *pgxpool.Pool
	Queue        *amqp091.Channel
	Key          *keyfunc.Keyfunc
	S3           *s3.Client
	Agent        agent.Client
	Store        catalog.Store
	Builder      *network.Builder
	Config       *config.Config
	MasterAPIKey string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
