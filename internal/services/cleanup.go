package services

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCleanupService periodically removes stale temp working files left behind
// by interrupted conversions and exports. It only ever touches the staging
// patterns in the OS temp directory; user uploads and exports are persistent.
type FileCleanupService struct {
	tempDir  string
	maxAge   time.Duration
	interval time.Duration
	ticker   *time.Ticker
	done     chan bool
}

var stagingPrefixes = []string{"pptx_fill_"}

var stagingSuffixes = []string{".pptx", ".pdf"}

func NewFileCleanupService(maxAge time.Duration) *FileCleanupService {
	return &FileCleanupService{
		tempDir:  os.TempDir(),
		maxAge:   maxAge,
		interval: time.Hour,
		done:     make(chan bool),
	}
}

func (fcs *FileCleanupService) Start() {
	fcs.ticker = time.NewTicker(fcs.interval)
	go func() {
		for {
			select {
			case <-fcs.done:
				return
			case <-fcs.ticker.C:
				fcs.sweep()
			}
		}
	}()
	log.Println("File cleanup service started")
}

func (fcs *FileCleanupService) Stop() {
	if fcs.ticker != nil {
		fcs.ticker.Stop()
	}
	fcs.done <- true
	log.Println("File cleanup service stopped")
}

func (fcs *FileCleanupService) sweep() {
	entries, err := os.ReadDir(fcs.tempDir)
	if err != nil {
		log.Printf("Error reading temp directory for cleanup: %v", err)
		return
	}

	for _, entry := range entries {
		if !fcs.isStaging(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) <= fcs.maxAge {
			continue
		}

		path := filepath.Join(fcs.tempDir, entry.Name())
		log.Printf("Cleaning up stale staging file: %s", path)
		if entry.IsDir() {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err != nil {
			log.Printf("Error during cleanup of %s: %v", path, err)
		}
	}
}

func (fcs *FileCleanupService) isStaging(name string) bool {
	for _, prefix := range stagingPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	for _, suffix := range stagingSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
