package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/folio/pkg/bootstrap"
	"github.com/wadjakorntonsri/folio/pkg/config"
	"github.com/wadjakorntonsri/folio/pkg/logging"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	// Note: On Vercel, db.sqlite is ephemeral unless DATABASE_URL points at Turso
	// and ANALYTICS_STORE is sqlite or redis.
	app, err := bootstrap.New(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	mux = app.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
