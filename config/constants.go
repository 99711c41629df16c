package config

import "time"

// Narration Constants
const (
	// WordsPerMinute is the narration pace used to size scripts
	WordsPerMinute = 150

	// ShortTargetSeconds is the narration length aimed at for short videos
	ShortTargetSeconds = 45

	// MinSegmentWords merges sentences shorter than this into the next one
	MinSegmentWords = 6

	// KeywordsPerSegment is how many search keywords each segment gets
	KeywordsPerSegment = 3
)

// Video Output Constants
const (
	// ShortWidth is the short profile width (9:16 aspect ratio)
	ShortWidth = 1080

	// ShortHeight is the short profile height (9:16 aspect ratio)
	ShortHeight = 1920

	// ShortFPS is the short profile frame rate
	ShortFPS = 30

	// ShortMaxDuration is the maximum short video length in seconds
	ShortMaxDuration = 60.0

	// LongWidth is the long profile width (16:9 aspect ratio)
	LongWidth = 1920

	// LongHeight is the long profile height (16:9 aspect ratio)
	LongHeight = 1080

	// LongFPS is the long profile frame rate
	LongFPS = 24

	// VideoCodec is the video encoding codec
	VideoCodec = "libx264"

	// AudioCodec is the audio encoding codec
	AudioCodec = "aac"

	// AudioBitrate is the audio quality bitrate
	AudioBitrate = "192k"

	// VideoPreset is the ffmpeg encoding speed preset
	VideoPreset = "medium"

	// ZoomPerSecond is the Ken Burns zoom rate applied to photos
	ZoomPerSecond = 0.02

	// SubtitleFontSize is the ASS font size at the profile's resolution
	SubtitleFontSize = 64

	// SubtitleMaxWordsLine caps the words shown in one subtitle event
	SubtitleMaxWordsLine = 6
)

// Title and Metadata Constants
const (
	// MaxTitleLength is the maximum character length for video titles
	MaxTitleLength = 100

	// MetadataScriptPreview is how much of the script is sent for metadata generation
	MetadataScriptPreview = 500
)

// Directory Constants
const (
	// VideosDir is the directory for rendered videos
	VideosDir = "videos"

	// AssetsDir is the per-run working directory root
	AssetsDir = "assets"

	// FallbackDir holds local images used when stock search finds nothing
	FallbackDir = "assets/fallback"

	// RunLogFile is the JSON run log
	RunLogFile = "videos_gerados.json"

	// CurationFile is the shared curation record
	CurationFile = "curacao_pendente.json"
)

// Curation Constants
const (
	// CurationTimeout is how long a run waits for human approval
	CurationTimeout = time.Hour

	// CurationPollInterval is how often the curation record is re-read
	CurationPollInterval = 5 * time.Second

	// CurationSendDelay spaces chat messages to avoid flood limits
	CurationSendDelay = 2 * time.Second
)

// YouTube Constants
const (
	// YouTubeCategoryID for Education
	YouTubeCategoryID = "27"

	// YouTubePrivacyStatus sets video visibility
	YouTubePrivacyStatus = "public"
)
