package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swipecast/vidgen/internal/apierr"
	"github.com/swipecast/vidgen/internal/logger"
	"github.com/swipecast/vidgen/internal/pipeline"
)

type generateRequest struct {
	UserID string `json:"user_id"`
	Alias  string `json:"userId"`
}

type generateDebug struct {
	ProcessedSwipes      int `json:"processed_swipes"`
	ValidSwipes          int `json:"valid_swipes"`
	LikedDescriptions    int `json:"liked_descriptions"`
	DislikedDescriptions int `json:"disliked_descriptions"`
}

type generateResponse struct {
	Message    string        `json:"message"`
	Prediction string        `json:"prediction"`
	Debug      generateDebug `json:"debug"`
}

func (s *Server) Generate(c *gin.Context) {
	var req generateRequest
	_ = c.ShouldBindJSON(&req)
	userID := req.UserID
	if userID == "" {
		userID = req.Alias
	}
	if userID == "" {
		userID = c.Query("user_id")
	}
	if userID == "" {
		userID = c.Query("userId")
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing userId"})
		return
	}

	log := s.reqLog(c)

	result, err := s.aggregator.BuildPrompt(c.Request.Context(), userID)
	if err != nil {
		respondError(c, log, err)
		return
	}

	prediction, err := s.dispatcher.Dispatch(c.Request.Context(), result.Prompt)
	if err != nil {
		respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, generateResponse{
		Message:    "generation started",
		Prediction: prediction,
		Debug: generateDebug{
			ProcessedSwipes:      result.ProcessedSwipes,
			ValidSwipes:          result.ValidSwipes,
			LikedDescriptions:    result.LikedDescriptions,
			DislikedDescriptions: result.DislikedDescriptions,
		},
	})
}

func (s *Server) GenerationWebhook(c *gin.Context) {
	var payload pipeline.CompletionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	// The dispatcher embedded the prompt in the callback URL; recover it here.
	if prompt := c.Query("prompt"); prompt != "" {
		payload.Prompt = prompt
	}

	log := s.reqLog(c)

	result, err := s.completion.Handle(c.Request.Context(), payload)
	if err != nil {
		respondError(c, log, err)
		return
	}

	if result.Status != pipeline.StatusSucceeded {
		resp := gin.H{
			"message": "acknowledged",
			"status":  result.Status.String(),
		}
		if result.Error != "" {
			resp["error"] = result.Error
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "video generated",
		"video_id":  result.VideoID,
		"video_url": result.VideoURL,
	})
}

func (s *Server) Feed(c *gin.Context) {
	limit := parseLimit(c.DefaultQuery("limit", "20"), 20, 100)

	videos, err := s.store.RecentVideos(c.Request.Context(), limit)
	if err != nil {
		respondError(c, s.reqLog(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func respondError(c *gin.Context, log *logger.Logger, err error) {
	ae := apierr.From(err)
	if ae.Status >= http.StatusInternalServerError {
		log.Error("request failed", "code", ae.Code, "error", ae.Error())
	}
	c.JSON(ae.Status, gin.H{"error": ae.Error()})
}
