package utils

// SchemaVersion identifies the JSON output envelope version
const SchemaVersion = "1.0"

// CopyBufferSize is the buffer size used for file copies and hashing
const CopyBufferSize = 1024 * 1024 // 1 MiB

// BackupTimestampLayout names backup subdirectories, one per sync run
const BackupTimestampLayout = "20060102_150405"
