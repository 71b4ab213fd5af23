/*
DESCRIPTION
  watcher.go implements an optional MOT carousel directory watcher: a
  background task that flags a carousel for reload whenever its backing
  directory changes, so the producer can re-apply SetObjects with
  refreshed bodies between ticks.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mot

import (
	"github.com/fsnotify/fsnotify"

	"github.com/ausocean/utils/logging"
)

// DirWatcher flags a Carousel for reload whenever a file under its
// configured directory is created, written or removed. Mutation of the
// carousel itself stays with the producer, which observes ReloadPending
// between ticks and calls SetObjects/ApplyReload.
type DirWatcher struct {
	watcher  *fsnotify.Watcher
	carousel *Carousel
	log      logging.Logger
	done     chan struct{}
}

// NewDirWatcher starts watching dir and flags carousel on every change
// event. Callers must call Close to release the underlying inotify/kqueue
// resources.
func NewDirWatcher(dir string, carousel *Carousel, log logging.Logger) (*DirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	dw := &DirWatcher{watcher: w, carousel: carousel, log: log, done: make(chan struct{})}
	go dw.run()
	return dw, nil
}

func (dw *DirWatcher) run() {
	for {
		select {
		case ev, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				if dw.log != nil {
					dw.log.Debug("mot: directory change observed", "path", ev.Name, "op", ev.Op.String())
				}
				dw.carousel.FlagReload()
			}
		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			if dw.log != nil {
				dw.log.Warning("mot: directory watcher error", "error", err.Error())
			}
		case <-dw.done:
			return
		}
	}
}

// Close stops the watcher goroutine and releases its OS resources.
func (dw *DirWatcher) Close() error {
	close(dw.done)
	return dw.watcher.Close()
}
