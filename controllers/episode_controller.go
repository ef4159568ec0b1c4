package controllers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Slingshot-Innovation/podcast-builder/models"
	"github.com/Slingshot-Innovation/podcast-builder/services"
	"github.com/Slingshot-Innovation/podcast-builder/utils"
)

type CreateEpisodeRequest struct {
	Query         string  `json:"query" binding:"required"`
	EpisodeLength float64 `json:"episode_length" binding:"required,gt=0"` // giây
}

// Tạo episode: chạy nguyên pipeline trong request, xong mới trả lời
func CreateEpisode(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var req CreateEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Không dùng request context: run đã bắt đầu thì chạy đến cùng,
	// client ngắt kết nối không hủy giữa chừng
	assembler := services.NewAssembler(db)
	episode, err := assembler.AssembleEpisode(context.Background(), req.Query, req.EpisodeLength)
	if err != nil {
		log.Printf("Tạo episode thất bại: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo episode"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Episode created successfully",
		"episode_id": episode.ID,
	})
}

// Danh sách episode, mới nhất trước
func GetEpisodes(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var episodes []models.Episode
	if err := db.Order("created_at DESC").Find(&episodes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lấy được danh sách episode"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"episodes": episodes})
}

// Chi tiết episode kèm intro, clips, transitions theo thứ tự index
func GetEpisodeDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	episodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "episode_id không hợp lệ"})
		return
	}

	var episode models.Episode
	err = db.
		Preload("Intro").
		Preload("Clips", func(db *gorm.DB) *gorm.DB {
			return db.Order("index ASC")
		}).
		Preload("Transitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("index ASC")
		}).
		First(&episode, "id = ?", episodeID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy episode"})
		return
	}

	c.JSON(http.StatusOK, episode)
}

// Xóa episode: xóa rows trước, file trên storage xóa best effort
func DeleteEpisode(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	episodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "episode_id không hợp lệ"})
		return
	}

	var episode models.Episode
	if err := db.Preload("Intro").Preload("Clips").Preload("Transitions").
		First(&episode, "id = ?", episodeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy episode"})
		return
	}

	urls := []string{episode.AudioURL}
	if episode.Intro != nil {
		urls = append(urls, episode.Intro.URL)
	}
	for _, clip := range episode.Clips {
		urls = append(urls, clip.URL)
	}
	for _, tr := range episode.Transitions {
		urls = append(urls, tr.URL)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("episode_id = ?", episodeID).Delete(&models.Intro{}).Error; err != nil {
			return err
		}
		if err := tx.Where("episode_id = ?", episodeID).Delete(&models.Clip{}).Error; err != nil {
			return err
		}
		if err := tx.Where("episode_id = ?", episodeID).Delete(&models.Transition{}).Error; err != nil {
			return err
		}
		return tx.Delete(&episode).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không xóa được episode"})
		return
	}

	for _, u := range urls {
		if err := utils.DeleteFileFromSupabase(u); err != nil {
			log.Printf("Không xóa được file %s: %v", u, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Episode deleted"})
}
