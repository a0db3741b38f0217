package app

import (
	"database/sql"

	"github.com/crmlite/leadboard/config"
	"github.com/go-chi/oauth"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
}
