package classify

// Default 返回内置类别表的副本。
func Default() ExtensionMap {
	return defaultMap.Clone()
}

var defaultMap = ExtensionMap{
	{Name: "Documents", Extensions: []string{".txt", ".pdf", ".doc", ".docx", ".xls", ".xlsx", ".csv", ".ppt", ".pptx", ".odt", ".ods", ".rtf"}},
	{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".svg", ".webp"}},
	{Name: "Audio", Extensions: []string{".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma", ".m4a", ".opus"}},
	{Name: "Video", Extensions: []string{".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".mpg", ".mpeg"}},
	{Name: "Code", Extensions: []string{".py", ".java", ".cpp", ".c", ".html", ".css", ".js", ".json", ".xml", ".yaml", ".yml", ".php"}},
	{Name: "Archives", Extensions: []string{".zip", ".rar", ".7z", ".tar", ".gz", ".tgz", ".bz2", ".xz"}},
	{Name: "Ebooks", Extensions: []string{".epub", ".mobi", ".azw"}},
	{Name: "Scripts", Extensions: []string{".sh", ".bash", ".ps1", ".bat", ".cmd"}},
	{Name: "Shortcuts", Extensions: []string{".lnk", ".url", ".desktop", ".webloc"}},
	{Name: "Fonts", Extensions: []string{".ttf", ".otf", ".woff", ".woff2"}},
	{Name: "Executable", Extensions: []string{".exe", ".msi", ".app"}},
	{Name: "Configuration", Extensions: []string{".ini", ".cfg", ".conf"}},
	{Name: "Text", Extensions: []string{".md", ".markdown", ".rst", ".tex", ".asciidoc"}},
	{Name: "Backup", Extensions: []string{".bak", ".old"}},
	{Name: "Presentations", Extensions: []string{".key"}},
	{Name: "Calendar", Extensions: []string{".ics"}},
	{Name: "Contacts", Extensions: []string{".vcf"}},
	{Name: "Database", Extensions: []string{".sql", ".db", ".sqlite", ".sqlite3"}},
	{Name: "Torrents", Extensions: []string{".torrent"}},
	{Name: "Emails", Extensions: []string{".eml", ".msg"}},
	{Name: "Logs", Extensions: []string{".log"}},
	{Name: "ISO", Extensions: []string{".iso"}},
	{Name: "SRT", Extensions: []string{".srt"}},
	{Name: "Subtitles", Extensions: []string{".sub", ".sbv", ".vtt"}},
}
