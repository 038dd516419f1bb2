package main

import (
	"context"
	"flag"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/swdee/go-actiondetect"
	"github.com/swdee/go-actiondetect/action"
	"github.com/swdee/go-actiondetect/client"
	"github.com/swdee/go-actiondetect/internal/api"
	"github.com/swdee/go-actiondetect/render"
)

func main() {

	// read in cli flags
	cfgFile := flag.String("c", "../data/config.yaml", "YAML configuration file")
	httpAddr := flag.String("a", "", "HTTP Address to run server on, format address:port, overrides config")

	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := actiondetect.LoadConfig(*cfgFile)

	if err != nil {
		logger.Fatalf("Error loading config: %v", err)
	}

	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(lvl)
	}

	if lvl := logger.GetLevel(); lvl < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	reg, err := cfg.Registry()

	if err != nil {
		logger.Fatalf("Error building label registry: %v", err)
	}

	httpDet := client.NewHTTPDetector(cfg.Inference.URL, cfg.Weight, cfg.Inference.Timeout, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = httpDet.CheckHealth(ctx)
	cancel()

	if err != nil {
		// the inference service may still be starting, requests fail with
		// 502 until it is up
		logger.Warnf("Inference service not ready: %v", err)
	}

	det := action.NewActionDetector(httpDet, reg, cfg.Exclude...)
	renderer := render.NewRenderer(render.DefaultStyles(), render.DefaultFont(),
		cfg.Render.LineThickness)

	router := api.NewRouter(api.NewHandler(det, renderer, logger))

	addr := cfg.HTTP.Addr

	if *httpAddr != "" {
		addr = *httpAddr
	}

	logger.WithFields(logrus.Fields{
		"addr":    addr,
		"labels":  reg.Labels(),
		"exclude": cfg.Exclude,
	}).Info("starting action detection server")

	if err := router.Run(addr); err != nil {
		logger.Fatalf("Error running server: %v", err)
	}
}
