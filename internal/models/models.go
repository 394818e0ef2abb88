package models

import "time"

// Source identifies how a leaf image was acquired
type Source string

const (
	SourceUpload Source = "upload"
	SourceCamera Source = "camera"
)

// ProcessingOptions are the server-side preprocessing flags sent with an image
type ProcessingOptions struct {
	EnhanceContrast bool `json:"enhance_contrast" yaml:"enhance_contrast"`
	AutoCrop        bool `json:"auto_crop" yaml:"auto_crop"`
}

// Prediction is one ranked disease candidate. Probability is a percentage (0-100).
type Prediction struct {
	Class       string   `json:"class" yaml:"class"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Probability float64  `json:"probability" yaml:"probability"`
	Prevention  []string `json:"prevention" yaml:"prevention"`
}

// ResultSet is the ranked diagnosis returned for one submission
type ResultSet struct {
	ID                 string       `json:"id" yaml:"id"`
	Predictions        []Prediction `json:"results" yaml:"results"`
	LowConfidence      bool         `json:"low_confidence" yaml:"low_confidence"`
	ImagePath          string       `json:"image_path" yaml:"image_path"`
	ProcessedImagePath string       `json:"processed_image_path,omitempty" yaml:"processed_image_path,omitempty"`
	Language           string       `json:"language" yaml:"language"`
	ReceivedAt         time.Time    `json:"received_at" yaml:"received_at"`
}

// Top returns the highest ranked prediction.
func (r *ResultSet) Top() Prediction {
	if r == nil || len(r.Predictions) == 0 {
		return Prediction{}
	}
	return r.Predictions[0]
}

// DisplayImagePath prefers the server-processed image when there is one.
func (r *ResultSet) DisplayImagePath() string {
	if r == nil {
		return ""
	}
	if r.ProcessedImagePath != "" {
		return r.ProcessedImagePath
	}
	return r.ImagePath
}

// Clone returns a deep copy so callers never share the workflow's copy.
func (r *ResultSet) Clone() *ResultSet {
	if r == nil {
		return nil
	}
	out := *r
	out.Predictions = make([]Prediction, len(r.Predictions))
	for i, p := range r.Predictions {
		p.Prevention = append([]string(nil), p.Prevention...)
		out.Predictions[i] = p
	}
	return &out
}

// Judgment is the user's verdict on a displayed result
type Judgment string

const (
	Correct   Judgment = "correct"
	Incorrect Judgment = "incorrect"
)

// FeedbackRecord is the user's correctness judgment for one result
type FeedbackRecord struct {
	Judgment        Judgment `json:"judgment"`
	CorrectedLabel  string   `json:"corrected_disease,omitempty"`
	ContributeImage bool     `json:"contribute_to_dataset"`
}

// GeoContext is the best-effort location attached to submissions
type GeoContext struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Name      string  `json:"name,omitempty" yaml:"name,omitempty"`
}

// DiseaseCount is one bar of the regional disease chart
type DiseaseCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// SeasonalTrend is one bar of the seasonal trend chart
type SeasonalTrend struct {
	Disease string `json:"disease" yaml:"disease"`
	Season  string `json:"season" yaml:"season"`
	Count   int    `json:"count" yaml:"count"`
}

// CommunitySubmission is a verified contribution from another user
type CommunitySubmission struct {
	Disease   string `json:"disease" yaml:"disease"`
	Location  string `json:"location,omitempty" yaml:"location,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// Insights are aggregated community statistics returned with feedback
type Insights struct {
	RegionDiseases    []DiseaseCount        `json:"regionDiseases" yaml:"region_diseases"`
	SeasonalTrends    []SeasonalTrend       `json:"seasonalTrends" yaml:"seasonal_trends"`
	RecentSubmissions []CommunitySubmission `json:"recentSubmissions" yaml:"recent_submissions"`
}

// PredictionRequest is what a prediction collaborator receives
type PredictionRequest struct {
	RequestID   string
	Filename    string
	ContentType string
	Image       []byte
	Options     ProcessingOptions
	Language    string
	Geo         *GeoContext
}

// FeedbackRequest is what a feedback collaborator receives
type FeedbackRequest struct {
	RequestID          string
	OriginalPrediction string
	Confidence         float64
	IsCorrect          bool
	CorrectedDisease   string
	Contribute         bool
	Filename           string
	ContentType        string
	Image              []byte
	Geo                *GeoContext
}

// FeedbackResponse is the feedback collaborator's reply. Success is nil when
// the server omits the field.
type FeedbackResponse struct {
	Success  *bool     `json:"success,omitempty"`
	Message  string    `json:"message,omitempty"`
	Insights *Insights `json:"insights,omitempty"`
}
