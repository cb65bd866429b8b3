package utils

import "errors"

const DefaultBufferSize = 1024 * 1024 * 4 // 4MB buffer
const LogFile = ".playlistdl.log"
const TempDirName = ".playlistdl-temp"
const ToolUserAgent = "playlistdl-cli"
const SessionCookieName = "session"

var ErrEmptyBatch = errors.New("batch file contains no links")
