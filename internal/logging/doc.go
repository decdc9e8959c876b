// ABOUTME: Logging package configuring logrus
// ABOUTME: Chooses level and writers from flags and environment
// Package logging sets up the process-wide logrus logger.
package logging
