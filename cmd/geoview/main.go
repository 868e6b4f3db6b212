// Package main provides the GeoView local data viewer.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"

	"go.geoview.io/geoview/internal/adapter/history"
	"go.geoview.io/geoview/internal/adapter/render"
	httpHandler "go.geoview.io/geoview/internal/http"
	"go.geoview.io/geoview/internal/usecase"
)

const version = "0.1.0"

// rasterWidth is the pixel width of rendered map images.
const rasterWidth = 900

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	noBrowser := flag.Bool("no-browser", false, "Do not open the browser on startup")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("geoview version %s\n", version)
		return
	}

	// Load configuration from environment.
	port := getEnv("PORT", "8399")
	historyPath := getEnv("GEOVIEW_HISTORY", defaultHistoryPath())
	coastlinePath := getEnv("GEOVIEW_COASTLINE", "")

	log.WithFields(log.Fields{
		"port":    port,
		"history": historyPath,
	}).Info("starting GeoView")

	renderer := render.New(rasterWidth)
	if coastlinePath != "" {
		if err := renderer.LoadCoastline(coastlinePath); err != nil {
			log.WithError(err).WithField("path", coastlinePath).
				Warn("coastline overlay disabled")
		} else {
			log.WithField("path", coastlinePath).Info("coastline overlay loaded")
		}
	}

	hist := history.Load(historyPath)
	session := usecase.NewSession(renderer, hist)
	defer session.Close()

	router := httpHandler.SetupRouter(session)

	url := fmt.Sprintf("http://localhost:%s/", port)
	if !*noBrowser {
		go func() {
			// Give the listener a moment to come up.
			time.Sleep(300 * time.Millisecond)
			if err := open.Run(url); err != nil {
				log.WithError(err).Warnf("could not open browser; visit %s", url)
			}
		}()
	}

	log.Infof("viewer available at %s", url)
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// defaultHistoryPath puts the history file in the user home directory,
// falling back to the working directory when home is unknown.
func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".geoview_history"
	}
	return filepath.Join(home, ".geoview_history")
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("GeoView v%s - NetCDF and shapefile viewer\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  geoview [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println("  -no-browser    Do not open the browser on startup")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Viewer port (default: 8399)")
	fmt.Println("  GEOVIEW_HISTORY         History file path (default: ~/.geoview_history)")
	fmt.Println("  GEOVIEW_COASTLINE       Coastline shapefile for grid map overlays (optional)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start the viewer and open the browser")
	fmt.Println("  geoview")
	fmt.Println()
	fmt.Println("  # Start headless on a custom port")
	fmt.Println("  PORT=3000 geoview -no-browser")
	fmt.Println()
}
