package main

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/thelolagemann/sm83/pkg/log"
)

// launchStats serves runtime charts (heap, goroutines, GC) on addr until
// the returned stop func is called.
func launchStats(addr string, l log.Logger) (stop func()) {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go func() {
		if err := mgr.Start(); err != nil {
			l.Debugf("statsview: %v", err)
		}
	}()
	l.Infof("runtime stats available at http://%s/debug/statsview", addr)
	return mgr.Stop
}
