package router

import (
	"github.com/gin-gonic/gin"

	userapp "github.com/oksasatya/go-ddd-user-accounts/internal/application"
	"github.com/oksasatya/go-ddd-user-accounts/internal/container"
	repouser "github.com/oksasatya/go-ddd-user-accounts/internal/domain/repository"
	pginfra "github.com/oksasatya/go-ddd-user-accounts/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-ddd-user-accounts/internal/interface/http"
	"github.com/oksasatya/go-ddd-user-accounts/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-user-accounts/internal/router/modules"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/mailer"
	tpl "github.com/oksasatya/go-ddd-user-accounts/pkg/mailer/templates"
)

type UserModuleDeps struct {
	Repo    repouser.UserRepository
	Service *userapp.Service
	Handler *handlers.UserHandler
	Auth    gin.HandlerFunc
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	repo := pginfra.NewUserRepository(container.GetPGPool())
	service := userapp.NewService(repo, helpers.NewBcryptHasher(cfg.Auth.BcryptCost), logger)

	var sessions *helpers.SessionStore
	if rdb := container.GetRedis(); rdb != nil {
		sessions = helpers.NewSessionStore(rdb)
		service.Sessions = sessions
	}
	if es := container.GetES(); es != nil && cfg.Search.UsersIndex != "" {
		service.Indexer = helpers.NewESIndexer(es, cfg.Search.UsersIndex)
	}
	if pub := container.GetRabbitPub(); pub != nil && cfg.Mail.Enabled {
		service.Notifier = mailer.NewNotifier(pub, tpl.Brand{
			AppName:     cfg.App.Name,
			CompanyName: cfg.Mail.CompanyName,
			SupportURL:  cfg.Mail.SupportURL,
		})
	}

	var auth gin.HandlerFunc
	if sessions != nil && cfg.Redis.SessionRequired {
		auth = middleware.Auth(container.GetJWT(), sessions)
	} else {
		auth = middleware.Auth(container.GetJWT(), nil)
	}

	return UserModuleDeps{
		Repo:    repo,
		Service: service,
		Handler: handlers.NewUserHandler(service, logger),
		Auth:    auth,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	userDeps := buildUserDeps()
	r.Add(modules.NewHealthModule())
	r.Add(modules.NewUserModule(userDeps.Handler, userDeps.Auth))
	if container.GetConfig().App.DebugMetrics {
		r.Add(modules.NewDebugModule())
	}
}
