package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ignacioLiotti/gec-sub001/internal/ingest"
	"github.com/ignacioLiotti/gec-sub001/internal/model"
	"github.com/ignacioLiotti/gec-sub001/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP import server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		engine, err := initEngine(st)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newMux(st, engine, int64(cfg.Server.MaxUploadMB)<<20),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newMux(st store.Store, engine *ingest.Engine, maxUploadBytes int64) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /tables", func(w http.ResponseWriter, r *http.Request) {
		tables, err := st.TargetTables(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, tables)
	})

	mux.HandleFunc("GET /status/{table}", func(w http.ResponseWriter, r *http.Request) {
		source := r.URL.Query().Get("source")
		if source == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source query parameter is required"})
			return
		}
		status, err := st.ImportStatus(r.Context(), r.PathValue("table"), source)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if status == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "never imported"})
			return
		}
		writeJSON(w, http.StatusOK, status)
	})

	mux.HandleFunc("POST /import", func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeImportRequest(r, maxUploadBytes)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		resp, err := engine.Import(r.Context(), *req)
		if err != nil {
			switch {
			case errors.Is(err, ingest.ErrInvalidRequest):
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			case errors.Is(err, ingest.ErrUnreadableFile):
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			default:
				zap.L().Error("import failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			}
			return
		}

		code := http.StatusOK
		if !resp.Success {
			code = http.StatusMultiStatus
		}
		writeJSON(w, code, resp)
	})

	return mux
}

// decodeImportRequest accepts either a plain JSON body carrying a stored
// reference, or a multipart upload with the file and a "request" JSON part.
func decodeImportRequest(r *http.Request, maxUploadBytes int64) (*model.ImportRequest, error) {
	ct := r.Header.Get("Content-Type")

	if !strings.HasPrefix(ct, "multipart/form-data") {
		var req model.ImportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, eris.Wrap(err, "decode request body")
		}
		return &req, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, eris.Wrap(err, "parse multipart form")
	}

	var req model.ImportRequest
	if raw := r.FormValue("request"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return nil, eris.Wrap(err, "decode request part")
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, eris.Wrap(err, "missing file part")
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, eris.Wrap(err, "read file part")
	}
	req.File = data
	if req.FileName == "" {
		req.FileName = header.Filename
	}
	req.Source = nil
	return &req, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
