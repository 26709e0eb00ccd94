// ABOUTME: Audio output package for playing decoded buffers
// ABOUTME: Provides Device/Route interfaces and the oto implementation
// Package output provides audio playback routing.
//
// A Device owns the system audio backend at a fixed output format. A
// Route owns the playback path for one session: the loaded buffer, at
// most one active source, a master volume gain and a per-source fade-in.
// Loading adapts sample rate and channel layout to the device; starting
// a source replaces the previous one, which is how seamless loop
// restarts are performed.
//
// The oto implementation drives real hardware. Tests substitute fake
// devices since oto permits one context per process.
//
// Example:
//
//	dev, err := output.NewOtoDevice(48000, 2, logger)
//	route, err := dev.OpenRoute()
//	err = route.Load(decoded)
//	err = route.Start(0, 0)
package output
