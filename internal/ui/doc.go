// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package ui holds the converter's interface state and renders it.
//
// State is the single mutable object the controller and the commands
// drive: the staged file, the client selector, the drag highlight, the
// busy flag and the preview view. Render turns a View into text and has no
// side effects. The remaining files write client lists as tables, JSON or
// YAML and show a spinner while a conversion is in flight.
package ui
