package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rtzll/transcriptgrab/internal/logger"
	"github.com/rtzll/transcriptgrab/internal/transcript"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
	log       *logger.Logger
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App, version string) *MCPServer {
	mcpServer := server.NewMCPServer(
		AppName+"-server",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
		log:       app.log.With("component", "mcp"),
	}
	s.registerTools()
	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_youtube_metadata",
		mcp.WithDescription("Look up a YouTube video's title, channel and thumbnail."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11-character video ID"),
			mcp.Required(),
		),
	), s.handleGetMetadata)

	s.mcpServer.AddTool(mcp.NewTool("get_youtube_transcript",
		mcp.WithDescription("Get a YouTube video's captions as plain text, timestamped lines or SRT. Fails when the video has no captions in the requested language."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11-character video ID"),
			mcp.Required(),
		),
		mcp.WithString("format",
			mcp.Description("plain (default), timestamps or srt"),
			mcp.Enum(string(transcript.FormatPlain), string(transcript.FormatTimestamps), string(transcript.FormatSRT)),
		),
		mcp.WithString("language",
			mcp.Description("Caption language code, e.g. en"),
		),
	), s.handleGetTranscript)

	s.mcpServer.AddTool(mcp.NewTool("search_youtube_transcript",
		mcp.WithDescription("Find case-insensitive occurrences of a phrase in a video's captions, with the timestamp of each match."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11-character video ID"),
			mcp.Required(),
		),
		mcp.WithString("query",
			mcp.Description("Text to search for"),
			mcp.Required(),
		),
	), s.handleSearchTranscript)

	s.mcpServer.AddTool(mcp.NewTool("summarize_youtube_video",
		mcp.WithDescription("Summarize a YouTube video from its captions as key-point bullets and a short paragraph. Summaries are cached per video."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11-character video ID"),
			mcp.Required(),
		),
	), s.handleSummarize)
}

// handleGetMetadata implements the get_youtube_metadata tool
func (s *MCPServer) handleGetMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	videoID, err := transcript.ExtractVideoID(url)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	video, err := s.app.VideoMetadata(ctx, videoID)
	if err != nil {
		s.log.Warn("metadata tool failed", "video_id", videoID, "error", err)
		return mcp.NewToolResultErrorFromErr("metadata error", err), nil
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "Title: %s\n", video.Title)
	if video.Author != "" {
		fmt.Fprintf(&buf, "Channel: %s\n", video.Author)
	}
	if video.AuthorURL != "" {
		fmt.Fprintf(&buf, "Channel URL: %s\n", video.AuthorURL)
	}
	if video.ThumbnailURL != "" {
		fmt.Fprintf(&buf, "Thumbnail: %s\n", video.ThumbnailURL)
	}
	fmt.Fprintf(&buf, "URL: %s\n", transcript.WatchURL(videoID))

	return mcp.NewToolResultText(buf.String()), nil
}

// handleGetTranscript implements the get_youtube_transcript tool
func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	format, err := transcript.ParseFormat(request.GetString("format", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	videoID, err := transcript.ExtractVideoID(url)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	language := request.GetString("language", s.app.config.Language)
	segments, err := s.app.youtube.FetchTranscript(ctx, videoID, language)
	if err != nil {
		s.log.Warn("transcript tool failed", "video_id", videoID, "error", err)
		return mcp.NewToolResultErrorFromErr(fmt.Sprintf("no transcript available (%s)", transcript.FailureOf(err)), err), nil
	}

	return mcp.NewToolResultText(transcript.Render(segments, format)), nil
}

// handleSearchTranscript implements the search_youtube_transcript tool
func (s *MCPServer) handleSearchTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	query, err := request.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query parameter is required and must be a non-empty string"), nil
	}
	videoID, err := transcript.ExtractVideoID(url)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	segments, err := s.app.youtube.FetchTranscript(ctx, videoID, s.app.config.Language)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("no transcript available", err), nil
	}

	return mcp.NewToolResultText(FormatMatches(segments, transcript.BuildIndex(segments, query))), nil
}

// handleSummarize implements the summarize_youtube_video tool
func (s *MCPServer) handleSummarize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	videoID, err := transcript.ExtractVideoID(url)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	segments, err := s.app.youtube.FetchTranscript(ctx, videoID, s.app.config.Language)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("no transcript available", err), nil
	}
	result, err := s.app.Summaries().GetOrCreate(ctx, videoID, transcript.JoinText(segments))
	if err != nil {
		s.log.Warn("summary tool failed", "video_id", videoID, "error", err)
		return mcp.NewToolResultErrorFromErr("summary failed", err), nil
	}

	return mcp.NewToolResultText(result.Summary.Markdown()), nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	s.log.Info("starting MCP server", "transport", transport, "port", port)
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		errc := make(chan error, 1)
		go func() { errc <- httpServer.Start(fmt.Sprintf(":%d", port)) }()
		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
			return httpServer.Shutdown(context.WithoutCancel(ctx))
		}
	}

	return server.ServeStdio(s.mcpServer)
}

// FormatMatches lists each match with its ordinal and the timestamp of
// its segment.
func FormatMatches(segments []transcript.Segment, ix *transcript.Index) string {
	if ix.Count() == 0 {
		return fmt.Sprintf("No matches for %q\n", ix.Query)
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d matches for %q\n", ix.Count(), ix.Query)
	for _, m := range ix.Matches {
		seg := segments[m.SegmentIndex]
		fmt.Fprintf(&buf, "%d. [%s] %s\n", m.Ordinal+1,
			transcript.FormatClockTimestamp(seg.Start), transcript.DecodeEntities(seg.Text))
	}
	return buf.String()
}
