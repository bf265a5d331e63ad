// Package gallery manages uploaded image assets and their derived 256x256
// thumbnails. Files live under the uploads dir, thumbnails under
// uploads/thumbs, and both are served statically by the webserver.
package gallery

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/NataPeralta/Store/internal/domain"
)

const thumbSize = 256

// ErrImageNotFound is returned for unknown gallery ids.
var ErrImageNotFound = errors.New("image not found")

// Service owns the uploads directory and the gallery table.
type Service struct {
	db        *gorm.DB
	uploadDir string
}

func NewService(db *gorm.DB, uploadDir string) *Service {
	_ = os.MkdirAll(filepath.Join(uploadDir, "thumbs"), 0o755)
	return &Service{db: db, uploadDir: uploadDir}
}

// UploadDir returns the directory uploads are stored in.
func (s *Service) UploadDir() string {
	return s.uploadDir
}

// SaveUpload stores a multipart upload, derives its thumbnail and records the
// gallery row. The display name is the original file name without extension.
func (s *Service) SaveUpload(fh *multipart.FileHeader) (*domain.GalleryImage, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	stored := fmt.Sprintf("image-%d%s", time.Now().UnixNano(), ext)
	dstPath := filepath.Join(s.uploadDir, stored)
	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dstPath)
		return nil, err
	}
	if err := dst.Close(); err != nil {
		return nil, err
	}

	preview, err := s.makeThumbnail(stored)
	if err != nil {
		_ = os.Remove(dstPath)
		return nil, err
	}

	img := &domain.GalleryImage{
		Name:        strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename)),
		ImagePath:   stored,
		PreviewPath: preview,
	}
	if err := s.db.Create(img).Error; err != nil {
		_ = os.Remove(dstPath)
		return nil, err
	}
	return img, nil
}

// List returns a page of gallery images, newest first.
func (s *Service) List(page, limit int) ([]domain.GalleryImage, int64, error) {
	var total int64
	if err := s.db.Model(&domain.GalleryImage{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var images []domain.GalleryImage
	err := s.db.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&images).Error
	return images, total, err
}

// Rename updates an image's display name.
func (s *Service) Rename(id int64, name string) error {
	res := s.db.Model(&domain.GalleryImage{}).Where("id = ?", id).
		Update("name", strings.TrimSpace(name))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrImageNotFound
	}
	return nil
}

// Delete removes the gallery row and both stored files. Product image links
// referencing the asset are removed as well.
func (s *Service) Delete(id int64) error {
	var img domain.GalleryImage
	if err := s.db.Where("id = ?", id).First(&img).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gallery_id = ?", id).Delete(&domain.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.GalleryImage{}).Error
	})
	if err != nil {
		return err
	}

	removeIfExists(filepath.Join(s.uploadDir, img.ImagePath))
	if img.PreviewPath != "" {
		removeIfExists(filepath.Join(s.uploadDir, img.PreviewPath))
	}
	return nil
}

// GenerateMissingThumbnails derives thumbnails for assets that lack one,
// fanning the image work out over a small worker pool.
func (s *Service) GenerateMissingThumbnails() (generated, failed int, err error) {
	var images []domain.GalleryImage
	if err := s.db.Where("preview_path = '' OR preview_path IS NULL").Find(&images).Error; err != nil {
		return 0, 0, err
	}
	if len(images) == 0 {
		return 0, 0, nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	pool, err := ants.NewPool(4)
	if err != nil {
		return 0, 0, err
	}
	defer pool.Release()

	for _, img := range images {
		img := img
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			preview, terr := s.makeThumbnail(img.ImagePath)
			if terr != nil {
				zap.L().Warn("thumbnail generation failed",
					zap.String("image", img.ImagePath), zap.Error(terr))
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			if uerr := s.db.Model(&domain.GalleryImage{}).Where("id = ?", img.ID).
				Update("preview_path", preview).Error; uerr != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			mu.Lock()
			generated++
			mu.Unlock()
		}); err != nil {
			wg.Done()
		}
	}
	wg.Wait()
	return generated, failed, nil
}

func (s *Service) makeThumbnail(stored string) (string, error) {
	src := filepath.Join(s.uploadDir, stored)
	img, err := imaging.Open(src)
	if err != nil {
		return "", err
	}
	thumb := imaging.Fill(img, thumbSize, thumbSize, imaging.Center, imaging.Lanczos)

	ext := filepath.Ext(stored)
	base := strings.TrimSuffix(filepath.Base(stored), ext)
	name := fmt.Sprintf("%s-%dx%d%s", base, thumbSize, thumbSize, ext)
	if err := imaging.Save(thumb, filepath.Join(s.uploadDir, "thumbs", name)); err != nil {
		return "", err
	}
	return filepath.Join("thumbs", name), nil
}

func removeIfExists(p string) {
	if _, err := os.Stat(p); err == nil {
		_ = os.Remove(p)
	}
}
