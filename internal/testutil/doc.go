// Package testutil holds fixtures shared by the package tests that need a
// complete bookstore: a throwaway configuration and a scripted line reader.
package testutil
