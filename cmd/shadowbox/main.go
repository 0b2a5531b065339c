package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/ayusman/shadowbox/internal/app"
	"github.com/ayusman/shadowbox/internal/server"
	"github.com/ayusman/shadowbox/internal/server/api"
	"github.com/ayusman/shadowbox/internal/stance"
	"github.com/ayusman/shadowbox/internal/store"
	"github.com/ayusman/shadowbox/internal/tracker"
	"github.com/ayusman/shadowbox/internal/tray"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cameraID := flag.Int("camera", 0, "camera device ID")
	mirrored := flag.Bool("mirror", true, "treat the camera feed as a mirror image")
	headless := flag.Bool("headless", false, "run without the system tray")
	flag.Parse()

	fmt.Println("Shadowbox - Motion-Controlled Boxing")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".shadowbox")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "shadowbox.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	application, err := app.New(app.Config{
		Store:     st,
		PluginDir: filepath.Join(dataDir, "plugins"),
		CameraID:  *cameraID,
		Mirrored:  *mirrored,
	})
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	if err := api.LoadPersistedConfig(application.Tracker(), st); err != nil {
		log.Printf("Failed to load persisted calibration: %v", err)
	}

	if err := application.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}

	webDir := findWebDir(homeDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       application,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if err := application.Start(); err != nil {
		log.Printf("Failed to start tracking pipeline: %v", err)
	}
	application.SetEnabled(true)

	if *headless {
		select {}
	}

	runTray(application, *addr)
	application.Stop()
}

// runTray blocks in the system tray event loop until the user quits.
func runTray(application *app.App, addr string) {
	t := tray.New()

	t.OnToggle(application.SetEnabled)
	t.OnSettings(func() {
		openBrowser("http://localhost" + addr)
	})

	application.OnStance(func(v stance.Stance) {
		t.SetStance(string(v))
	})
	application.Tracker().OnPunch(func(ev tracker.PunchEvent) {
		t.SetLastPunch(fmt.Sprintf("%s (%.0f%%)", ev.Side, ev.Power*100))
	})

	t.Run()
}

// openBrowser opens the dashboard in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
func findWebDir(homeDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(homeDir, ".shadowbox", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
