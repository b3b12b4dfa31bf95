//go:build plugin

package main

var PLUGIN_ID = [4]byte{'A', 'i', 'D', 'j'}

const PLUGIN_NAME = "ai-dj"
