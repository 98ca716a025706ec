// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the notes client runtime.
//
// It wires the sync queue, the server adapter, the event bus and the
// background syncers into a single process lifecycle with sign-in and
// sign-out.
package client
