// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the fieldcrypt command-line runtime.
//
// It dispatches one command for one user onto the field encryption services,
// prompts for passwords on the terminal and prints results as JSON on the
// configured output. Every run ends with the session and key caches cleared.
package client
