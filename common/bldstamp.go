// /home/krylon/go/src/github.com/blicero/mnemosyne/common/bldstamp.go
// This file was generated automatically. Do not edit it manually.

package common

// BuildStamp is the time when the application was built.
const BuildStamp = "2026-08-21 18:35:02"
