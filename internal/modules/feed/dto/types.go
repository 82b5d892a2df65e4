package dto

type MetadataInput struct {
	Login            string
	Student          string
	StartDate        string
	EndDate          string
	Headless         bool
	IgnoreCachedAuth bool
	ClearExisting    bool
}

type MetadataOutput struct {
	StudentID string
	Skipped   int
	Added     int
	Total     int
}

type MediaInput struct {
	DestinationDir string
	SkipTagging    bool
	ForceDownload  bool
	Latitude       *float64
	Longitude      *float64
}

type MediaOutput struct {
	Activities int
	Media      int
	Downloaded int
	Tagged     int
}
