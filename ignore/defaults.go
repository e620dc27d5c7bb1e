package ignore

// DefaultExtensions are the file extensions processed when none are configured.
var DefaultExtensions = []string{
	".cs",
	".cshtml",
	".txt",
	".js",
	".xml",
	".css",
	".less",
	".scss",
	".md",
}

// DefaultExcludedFolders are directory names never descended into.
var DefaultExcludedFolders = []string{
	// Version control
	".git",

	// Build output
	"bin",
}
