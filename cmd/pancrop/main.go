package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2/app"

	"github.com/dixieflatline76/PanCrop/config"
	"github.com/dixieflatline76/PanCrop/pkg/api"
	"github.com/dixieflatline76/PanCrop/pkg/sysinfo"
	"github.com/dixieflatline76/PanCrop/pkg/ui"
	"github.com/dixieflatline76/PanCrop/util/log"
)

func main() {
	path := ""
	if len(os.Args) > 1 {
		abs, err := filepath.Abs(os.Args[1])
		if err != nil {
			log.Fatalf("Invalid path %s: %v", os.Args[1], err)
		}
		path = abs
	}

	acquired, err := acquireLock()
	if err != nil {
		log.Printf("Single-instance lock unavailable, continuing: %v", err)
	} else if !acquired {
		handOff(path)
		return
	}
	defer releaseLock()

	a := app.NewWithID(config.AppID)
	cfg := config.NewAppConfig(a.Preferences())
	if sw, sh, err := sysinfo.GetScreenDimensions(); err == nil {
		w, h := cfg.GetWindowSize()
		cfg.SetWindowSize(sysinfo.FitWindow(w, h, sw, sh))
	} else {
		log.Debugf("screen size: %v", err)
	}

	server := api.NewServer()
	go func() {
		if err := server.Start(config.HandoffAddr); err != nil {
			log.Printf("Hand-off server stopped: %v", err)
		}
	}()

	pa := ui.NewApp(a, cfg, server)
	if path != "" {
		pa.OpenFile(path)
	}
	pa.ShowAndRun()

	if err := server.Stop(); err != nil {
		log.Printf("Failed to stop hand-off server: %v", err)
	}
}

// handOff passes path to the running instance.
func handOff(path string) {
	if path == "" {
		log.Printf("%s is already running", config.AppName)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := api.SendOpen(ctx, config.HandoffAddr, path); err != nil {
		log.Fatalf("Failed to hand %s to the running instance: %v", path, err)
	}
	log.Printf("Handed %s to the running instance", path)
}
