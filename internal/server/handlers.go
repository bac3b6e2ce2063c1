package server

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rtzll/transcriptgrab/internal/apperr"
	"github.com/rtzll/transcriptgrab/internal/metadata"
	"github.com/rtzll/transcriptgrab/internal/store"
	"github.com/rtzll/transcriptgrab/internal/transcript"
)

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type transcriptRequest struct {
	URL          string `json:"url"`
	LanguageCode string `json:"languageCode"`
}

type transcriptData struct {
	VideoID  string               `json:"videoId"`
	Segments []transcript.Segment `json:"segments"`
}

func (s *Server) fetchTranscript(c *gin.Context) {
	var req transcriptRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Please enter a valid YouTube URL",
			"errorType": "INVALID_URL",
		})
		return
	}

	videoID, err := transcript.ExtractVideoID(req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     apperr.MessageOf(err, "Please enter a valid YouTube URL"),
			"errorType": "INVALID_URL",
		})
		return
	}

	language := req.LanguageCode
	if language == "" {
		language = s.cfg.DefaultLanguage
	}
	segments, err := s.deps.Transcripts.FetchTranscript(c.Request.Context(), videoID, language)
	if err == nil && len(segments) == 0 {
		err = transcript.NewSourceError("Transcript is disabled on this video", nil)
	}
	if err != nil {
		kind := transcript.FailureOf(err)
		status := http.StatusBadRequest
		if kind == transcript.FailureRateLimited {
			status = http.StatusTooManyRequests
		}
		s.log.Warn("transcript fetch failed", "video_id", videoID, "error_type", kind, "error", err)
		c.JSON(status, gin.H{"success": false, "error": err.Error(), "errorType": kind})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    transcriptData{VideoID: videoID, Segments: segments},
	})
}

func (s *Server) fetchMetadata(c *gin.Context) {
	videoURL := c.Query("url")
	if err := metadata.ValidateURL(videoURL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": apperr.MessageOf(err, "Invalid url")})
		return
	}

	v, err := s.deps.Metadata.Fetch(c.Request.Context(), videoURL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Could not fetch video metadata"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": v})
}

func (s *Server) session(c *gin.Context) {
	userID := currentUser(c)
	c.JSON(http.StatusOK, gin.H{"signedIn": userID != "", "userId": nullable(userID)})
}

func (s *Server) checkTranscript(c *gin.Context) {
	userID := currentUser(c)
	videoID := c.Query("videoId")
	if userID == "" || videoID == "" {
		c.JSON(http.StatusOK, gin.H{"exists": false, "transcriptId": nil})
		return
	}

	exists, id, err := s.deps.Store.ExistsFor(c.Request.Context(), userID, videoID)
	if err != nil {
		s.log.Error("duplicate check failed", "video_id", videoID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"exists": false, "transcriptId": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists, "transcriptId": nullable(id)})
}

type saveRequest struct {
	VideoID       string               `json:"videoId"`
	VideoURL      string               `json:"videoUrl"`
	VideoTitle    string               `json:"videoTitle"`
	ThumbnailURL  string               `json:"thumbnailUrl"`
	VideoDuration *float64             `json:"videoDuration"`
	Segments      []transcript.Segment `json:"segments"`
}

func (s *Server) saveTranscript(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		req.VideoID == "" || req.VideoURL == "" || req.VideoTitle == "" || len(req.Segments) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	res, err := s.deps.Store.Upsert(c.Request.Context(), store.TranscriptInput{
		UserID:        currentUser(c),
		VideoID:       req.VideoID,
		VideoURL:      req.VideoURL,
		VideoTitle:    req.VideoTitle,
		ThumbnailURL:  req.ThumbnailURL,
		VideoDuration: videoDuration(req.VideoDuration, req.Segments),
		Segments:      req.Segments,
	})
	if err != nil {
		s.log.Error("saving transcript failed", "video_id", req.VideoID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save transcript"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// videoDuration prefers the client's value and otherwise derives one from
// the end of the last segment.
func videoDuration(given *float64, segments []transcript.Segment) *int {
	var secs float64
	switch {
	case given != nil:
		secs = *given
	case len(segments) > 0:
		secs = transcript.TotalDuration(segments)
	default:
		return nil
	}
	if secs <= 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return nil
	}
	d := int(math.Round(secs))
	return &d
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) deleteTranscripts(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or empty ids array"})
		return
	}

	n, err := s.deps.Store.DeleteMany(c.Request.Context(), currentUser(c), req.IDs)
	if err != nil {
		s.log.Error("deleting transcripts failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transcripts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (s *Server) listHistory(c *gin.Context) {
	list, err := s.deps.Store.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.log.Error("listing history failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load history"})
		return
	}
	if list == nil {
		list = []store.Transcript{}
	}
	c.JSON(http.StatusOK, gin.H{"transcripts": list})
}

func (s *Server) getHistory(c *gin.Context) {
	t, ok := s.loadTranscript(c)
	if !ok {
		return
	}

	formatParam := c.Query("format")
	if formatParam == "" {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": t})
		return
	}

	format, err := transcript.ParseFormat(formatParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	filename := transcript.SanitizeFilename(t.VideoTitle) + format.Extension()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.MIMEType(), []byte(transcript.Render(t.Segments, format)))
}

type searchMatch struct {
	transcript.Match
	Start float64 `json:"start"`
	Text  string  `json:"text"`
}

func (s *Server) searchHistory(c *gin.Context) {
	t, ok := s.loadTranscript(c)
	if !ok {
		return
	}

	ix := transcript.BuildIndex(t.Segments, c.Query("q"))
	matches := make([]searchMatch, 0, ix.Count())
	for _, m := range ix.Matches {
		seg := t.Segments[m.SegmentIndex]
		matches = append(matches, searchMatch{
			Match: m,
			Start: seg.Start,
			Text:  transcript.DecodeEntities(seg.Text),
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"query":   ix.Query,
		"count":   ix.Count(),
		"matches": matches,
	}})
}

func (s *Server) loadTranscript(c *gin.Context) (*store.Transcript, bool) {
	t, err := s.deps.Store.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		status := apperr.Status(err)
		if status == http.StatusInternalServerError {
			s.log.Error("loading transcript failed", "id", c.Param("id"), "error", err)
		}
		c.JSON(status, gin.H{"success": false, "error": apperr.MessageOf(err, "Failed to load transcript")})
		return nil, false
	}
	return t, true
}

type summarizeRequest struct {
	VideoID        string `json:"videoId"`
	TranscriptText string `json:"transcriptText"`
}

func (s *Server) summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.VideoID == "" || req.TranscriptText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	res, err := s.deps.Summaries.GetOrCreate(c.Request.Context(), req.VideoID, req.TranscriptText)
	if err != nil {
		status, msg := summaryFailure(err)
		s.log.Warn("summary failed", "video_id", req.VideoID, "status", status, "error", err)
		c.JSON(status, gin.H{"success": false, "error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": res.Summary, "source": res.Source})
}

// summaryFailure maps a summary error to its status and client message.
func summaryFailure(err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.KindRateLimit:
		return http.StatusTooManyRequests, "Summary temporarily unavailable"
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout, "Summary timed out — try again"
	case apperr.KindValidation:
		return http.StatusBadRequest, apperr.MessageOf(err, "Missing required fields")
	default:
		return http.StatusInternalServerError, "Failed to generate summary"
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
