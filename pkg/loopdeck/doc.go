// ABOUTME: High-level loopdeck library API
// ABOUTME: Provides the Player type for embedding loop playback in other programs

// Package loopdeck provides a high-level API for local loop playback.
//
// This is the main entry point for embedding the player in other programs.
// It scans a directory of recordings, plays one at a time with optional
// seamless looping over saved loop points, and computes cached waveform
// envelopes for display.
//
// Example:
//
//	player, err := loopdeck.NewPlayer(loopdeck.Config{
//	    LibraryDir: "/home/me/loops",
//	    Volume:     80,
//	})
//	err = player.PlayLoop("groove.wav")
//	env, err := player.Waveform(ctx, "groove.wav")
//	player.Close()
//
// For lower-level control, see the audio and audio/output packages.
package loopdeck
