package config

import "strings"

// AppVersion is the version of the application, stamped at build time.
var AppVersion = "0.1.0"

// AppName is the name of the application.
const AppName = "PanCrop"

// AppID is the fyne application ID. Preferences are stored under it.
const AppID = "com.dixieflatline76.pancrop"

// LogWinSubDir is the sub directory for the log files on windows.
var LogWinSubDir = AppName

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"

// HandoffAddr is the loopback address the running instance listens on for
// files passed to a second invocation.
const HandoffAddr = "127.0.0.1:49453"
