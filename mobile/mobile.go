package mobile

import (
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"tictactoe/internal/engine"
	httpserver "tictactoe/internal/server/http"
	"tictactoe/internal/settings"
)

// StartServer starts the local HTTP server.
// webDir: physical path to the extracted web assets
// port: port to listen on, e.g. "2888"
// Settings are kept next to the web assets in settings.yaml.
func StartServer(webDir string, port string) {
	log, err := zap.NewProduction()
	if err != nil {
		log = zap.NewNop()
	}

	h := httpserver.NewHandler(httpserver.Options{
		Logger:   log,
		Engine:   engine.NewEngine(engine.WithLogger(log.Named("engine"))),
		Settings: settings.NewFileStore(filepath.Join(webDir, "settings.yaml")),
		AIPacing: true,
	})
	handler := httpserver.NewRouter(h, webDir)

	// Run in background so it doesn't block the Android UI thread
	go func() {
		defer log.Sync()
		if err := http.ListenAndServe("127.0.0.1:"+port, handler); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()
}
