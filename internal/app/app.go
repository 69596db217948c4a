package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"campuscycle/internal/bins"
	"campuscycle/internal/capture"
	"campuscycle/internal/complaint"
	"campuscycle/internal/config"
	"campuscycle/internal/domain"
	"campuscycle/internal/geo"
	"campuscycle/internal/httpapi"
	"campuscycle/internal/storage/sqlite"
	"campuscycle/internal/vision"
)

// App holds the wired services shared by the serve, capture and sweep
// commands. Build it with New and release resources with Close.
type App struct {
	Config     config.Config
	DB         *sql.DB
	Manager    *complaint.Manager
	Registry   *bins.Registry
	Classifier *vision.Classifier
}

// New loads configuration, opens the database and constructs the
// services. When withModel is false the ONNX session is skipped, which
// keeps commands that never classify usable on machines without the
// model file.
func New(withModel bool) (*App, error) {
	cfg := config.LoadConfig()

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Infof("[App] Config loaded. DB=%s Listen=%s Model=%s InputSize=%d",
		cfg.DBPath, cfg.ListenAddr, cfg.ModelPath, cfg.InputSize)

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	log.Infof("[App] Database initialized at %s", cfg.DBPath)

	app := &App{
		Config:   cfg,
		DB:       db,
		Manager:  complaint.NewManager(sqlite.NewComplaintStore(db), geoProvider(cfg)),
		Registry: bins.NewRegistry(sqlite.NewBinStore(db)),
	}

	if withModel {
		if err := cfg.ValidateModel(); err != nil {
			db.Close()
			return nil, err
		}
		classifier, err := vision.NewClassifier(cfg.ModelPath, cfg.LabelsPath, cfg.InputSize)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Infof("[App] Classifier ready. labels=%d", len(classifier.Labels()))
		app.Classifier = classifier
	}

	return app, nil
}

func (a *App) Close() {
	if a.Classifier != nil {
		if err := a.Classifier.Close(); err != nil {
			log.Warnf("[App] Closing classifier: %v", err)
		}
	}
	a.DB.Close()
}

func geoProvider(cfg config.Config) geo.Provider {
	if cfg.GeoLat != nil && cfg.GeoLng != nil {
		return geo.Fixed{Coord: domain.Coordinate{Lat: *cfg.GeoLat, Lng: *cfg.GeoLng}}
	}
	return geo.Unavailable{}
}

// Serve runs the HTTP API together with the scheduled bin sweep until
// the context is cancelled or the process receives SIGINT/SIGTERM.
func (a *App) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(a.Config.UploadDir, 0755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	var classifier httpapi.ImageClassifier
	if a.Classifier != nil {
		classifier = a.Classifier
	}
	server := httpapi.NewServer(a.Manager, a.Registry, classifier, a.Config.UploadDir)

	c := cron.New()
	if _, err := c.AddFunc(a.Config.SweepSchedule, func() {
		if _, err := a.Registry.Sweep(context.Background()); err != nil {
			log.Errorf("[Sweep] %v", err)
		}
	}); err != nil {
		return fmt.Errorf("sweep schedule %q: %w", a.Config.SweepSchedule, err)
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{Addr: a.Config.ListenAddr, Handler: server.Router()}
	errc := make(chan error, 1)
	go func() {
		log.Infof("[App] Listening on %s", a.Config.ListenAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info("[App] Shutting down")
		return srv.Shutdown(context.Background())
	}
}

// Capture classifies frames from a source until it is exhausted or the
// context is cancelled. Per-frame failures are logged and skipped so a
// single bad image never stops the loop.
func (a *App) Capture(ctx context.Context, source capture.Source) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer source.Close()

	for {
		frame, err := source.Next(ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, context.Canceled):
			return nil
		case errors.Is(err, capture.ErrFrameTimeout):
			log.Warnf("[Capture] %v", err)
			continue
		default:
			log.Errorf("[Capture] Acquiring frame: %v", err)
			continue
		}

		res, err := a.Classifier.ClassifyFrame(frame)
		if err != nil {
			log.Errorf("[Capture] Classifying frame: %v", err)
			continue
		}
		log.Infof("[Capture] %s (%.1f%%)", res.Label, res.Confidence)
	}
}
