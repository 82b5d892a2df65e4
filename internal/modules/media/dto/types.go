package dto

type ProcessInput struct {
	Kind           string
	DestinationDir string
	Payload        []byte
	WriteTags      bool
	ForceDownload  bool
	Latitude       *float64
	Longitude      *float64
}

type ProcessOutput struct {
	Kind       string
	Processed  bool
	Downloaded bool
	Tagged     bool
	Path       string
}
