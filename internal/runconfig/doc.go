// Package runconfig loads an experiment's run configuration.
//
// The configuration is the experiment's config.json. It is validated
// against an embedded CUE schema before decoding, so a config declaring
// anything other than exactly two toolchains, or a toolchain source that
// is neither "ci" nor "dist", is rejected with a positioned error.
//
// Toolchain labels are how archive paths and log URLs name a toolchain:
//
//	{"type": "dist", "name": "beta"}              -> beta
//	{"type": "ci", "sha": "abc", "try": false}    -> master#abc
//	{"type": "ci", "sha": "abc", "try": true}     -> try#abc
package runconfig
