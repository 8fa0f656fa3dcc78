// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelayer/snapshot.go
// Summary: Renders one frame of a widget to PNG without a compositor.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"time"

	"github.com/framegrace/texelayer/internal/runtimeadapter"
	"github.com/framegrace/texelayer/loop"
	"github.com/framegrace/texelayer/registry"
)

const (
	snapshotWidth  = 400
	snapshotHeight = 300
)

func snapshot(args []string, reg *registry.Registry, stdin io.Reader, stderr io.Writer) int {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "snapshot.png", "output file, - for stdout")
	scale := fs.Int("scale", 1, "output scale")
	width := fs.Int("width", 0, "logical width (default from the widget's surface config)")
	height := fs.Int("height", 0, "logical height (default from the widget's surface config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: texelayer snapshot [-o file.png] [-scale n] <widget> [widget args]")
		return 2
	}
	name := fs.Arg(0)
	if reg.Get(name) == nil {
		fmt.Fprintf(stderr, "texelayer: unknown widget %q\n", name)
		return 2
	}

	inst, err := reg.Create(name, registry.Invocation{Args: fs.Args()[1:], Stdin: stdin, Stdout: io.Discard})
	if err != nil {
		log.Printf("Snapshot: %v", err)
		return 1
	}
	w, h := *width, *height
	if sc, err := runtimeadapter.SurfaceConfig(inst.Config); err == nil {
		if w == 0 {
			w = sc.Width
		}
		if h == 0 {
			h = sc.Height
		}
	}
	if w <= 0 {
		w = snapshotWidth
	}
	if h <= 0 {
		h = snapshotHeight
	}

	hs := loop.NewHarness(inst.Widget, w, h, time.Now)
	defer hs.Close()
	if *scale > 1 {
		hs.Send(loop.Configure{Width: w, Height: h, Scale: *scale})
	}
	canvas := hs.Draw()

	var dst io.Writer = os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			log.Printf("Snapshot: %v", err)
			return 1
		}
		defer f.Close()
		dst = f
	}
	bw := bufio.NewWriter(dst)
	if err := png.Encode(bw, canvas.Image()); err != nil {
		log.Printf("Snapshot: encode: %v", err)
		return 1
	}
	if err := bw.Flush(); err != nil {
		log.Printf("Snapshot: %v", err)
		return 1
	}
	log.Printf("Snapshot: %s %dx%d@%d written to %s", inst.Manifest.Name, w, h, *scale, *out)
	return 0
}
