// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// watchFile calls rerun each time filename is written or recreated,
// until interrupted. The directory is watched rather than the file so
// that editors that replace the file on save are followed.
func watchFile(filename string, rerun func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer w.Close()
	target := filepath.Clean(filename)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", filename)
	}
	glog.Infof("watching %s", target)

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)
	defer signal.Stop(sigint)
	for {
		select {
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != target {
				continue
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				glog.V(1).Infof("%s: %s", e.Name, e.Op)
				rerun()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			glog.Warning(err)
		case sig := <-sigint:
			glog.Infof("Received %+v, exiting...", sig)
			return nil
		}
	}
}

// writeMetrics writes the metrics gathered from g in the Prometheus
// text exposition format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "failed to gather metrics")
	}
	return encodeMetrics(w, mfs)
}

func encodeMetrics(w io.Writer, mfs []*dto.MetricFamily) error {
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return errors.Wrapf(err, "failed to encode %s", mf.GetName())
		}
	}
	return nil
}
