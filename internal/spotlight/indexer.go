package spotlight

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"counties/internal/country"
	"counties/internal/logger"
	"counties/internal/metrics"

	"golang.org/x/image/draw"
)

// Indexer：把数据集写入检索后端
type Indexer struct {
	index    Index
	flagsDir string
	timeout  time.Duration
	log      *slog.Logger
}

// NewIndexer：flagsDir 为空时不附带缩略图
func NewIndexer(idx Index, flagsDir string) *Indexer {
	return &Indexer{index: idx, flagsDir: flagsDir, timeout: time.Minute, log: logger.Component("spotlight")}
}

// Items：每个县一条；描述为人口描述，坐标取县的位置
func (x *Indexer) Items(regions []country.Region) []Item {
	var out []Item
	for _, r := range regions {
		for _, c := range r.Counties {
			out = append(out, Item{
				ID:                 c.ID,
				Title:              c.Name,
				Description:        c.PopulationDescription(),
				Latitude:           c.Location.Latitude,
				Longitude:          c.Location.Longitude,
				Thumbnail:          x.thumbnail(c.Name),
				SupportsNavigation: true,
			})
		}
	}
	return out
}

// ThumbnailMaxSide：缩略图最长边（像素）
const ThumbnailMaxSide = 300

// thumbnail 读取 <flagsDir>/<Name>.png；缺失或无法解码时返回 nil
// 约束：超过 ThumbnailMaxSide×ThumbnailMaxSide 时按比例缩小后重新编码；未超过时原样返回
func (x *Indexer) thumbnail(name string) []byte {
	if x.flagsDir == "" {
		return nil
	}
	b, err := os.ReadFile(filepath.Join(x.flagsDir, name+".png"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			x.log.Warn("spotlight_thumbnail_error", "county", name, "err", err)
		}
		return nil
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		x.log.Warn("spotlight_thumbnail_not_png", "county", name, "err", err)
		return nil
	}
	if cfg.Width <= ThumbnailMaxSide && cfg.Height <= ThumbnailMaxSide {
		return b
	}
	out, err := resizeToFit(b, ThumbnailMaxSide)
	if err != nil {
		x.log.Warn("spotlight_thumbnail_resize_error", "county", name, "err", err)
		return nil
	}
	x.log.Debug("spotlight_thumbnail_resized", "county", name, "from_w", cfg.Width, "from_h", cfg.Height)
	return out
}

// resizeToFit：等比缩放到 side×side 以内（CatmullRom），重新编码为 PNG
func resizeToFit(b []byte, side int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	if w >= h {
		w, h = side, h*side/w
	} else {
		w, h = w*side/h, side
	}
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IndexRegionsSync：同步写入，供工具程序与测试使用
func (x *Indexer) IndexRegionsSync(ctx context.Context, regions []country.Region) error {
	items := x.Items(regions)
	if err := x.index.IndexItems(ctx, items); err != nil {
		return err
	}
	metrics.SearchIndexedItems.Set(float64(len(items)))
	x.log.Info("spotlight_indexed", "items", len(items))
	return nil
}

// 文档注释：后台写入索引
// 背景：启动时调用，不阻塞服务；失败只记录日志，不重试。
// 返回：写入结束（无论成败）时关闭的通道。
func (x *Indexer) IndexRegions(regions []country.Region) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), x.timeout)
		defer cancel()
		if err := x.IndexRegionsSync(ctx, regions); err != nil {
			x.log.Error("spotlight_index_error", "err", err)
		}
	}()
	return done
}
