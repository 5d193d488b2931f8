package category

// Defaults returns the built-in category mapping used when no JSON override
// is configured or the configured file cannot be read.
func Defaults() *Mapping {
	return New(map[string][]string{
		"Images":    {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp", ".tiff", ".ico", ".heic"},
		"Documents": {".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt", ".xlsx", ".csv", ".ppt", ".pptx", ".md"},
		"Audio":     {".mp3", ".wav", ".flac", ".m4a", ".aac", ".ogg", ".wma", ".aiff"},
		"Video":     {".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".mpg", ".mpeg"},
		"Archives":  {".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz"},
		"Code":      {".py", ".js", ".html", ".css", ".java", ".cpp", ".c", ".go", ".rs", ".php", ".sh", ".sql"},
		"Software":  {".exe", ".msi", ".apk", ".dmg", ".deb", ".rpm", ".iso", ".img"},
		"Books":     {".epub", ".mobi", ".azw3", ".djvu"},
		"Fonts":     {".ttf", ".otf", ".woff", ".woff2"},
	})
}
