/*
DESCRIPTION
  watcher.go implements a file-monitor Dynamic Label Segment source:
  watching a text file and pushing its contents to a DLSEncoder whenever
  it changes, so the toggle bit flips and receivers re-render the label.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pad

import (
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/ausocean/utils/logging"
)

// FileWatcher is the file-monitor DLS source: it watches a single text
// file and, on every write, reads its contents and pushes them to the
// bound DLSEncoder. A read failure is logged and the previous label is
// left in place.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	enc     *DLSEncoder
	path    string
	log     logging.Logger
	done    chan struct{}
}

// NewFileWatcher starts watching path and pushes its initial contents (if
// any) to enc before returning. Callers must call Close to stop the
// watcher goroutine.
func NewFileWatcher(path string, enc *DLSEncoder, log logging.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	fw := &FileWatcher{watcher: w, enc: enc, path: path, log: log, done: make(chan struct{})}
	fw.reload()
	go fw.run()
	return fw, nil
}

func (fw *FileWatcher) reload() {
	data, err := os.ReadFile(fw.path)
	if err != nil {
		if fw.log != nil {
			fw.log.Warning("pad: could not read DLS source file", "path", fw.path, "error", err.Error())
		}
		return
	}
	fw.enc.SetText(strings.TrimRight(string(data), "\n"))
}

func (fw *FileWatcher) run() {
	for {
		select {
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				fw.reload()
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			if fw.log != nil {
				fw.log.Warning("pad: DLS source watcher error", "error", err.Error())
			}
		case <-fw.done:
			return
		}
	}
}

// Close stops the watcher goroutine and releases its OS resources.
func (fw *FileWatcher) Close() error {
	close(fw.done)
	return fw.watcher.Close()
}
