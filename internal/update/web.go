package update

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/mod/semver"
)

// WebSource 解析 GitHub releases 页面 HTML（API 限流/不可达时的回退）。
//
// 页面列表按时间倒序，第一个符合渠道的 tag 即最新版本。
// 网页没有资产清单，Release.Assets 恒为空，上层会退回 release 页面链接。
type WebSource struct {
	Owner string
	Repo  string

	Prerelease bool

	// BaseURL 供测试注入；为空时使用 https://github.com。
	BaseURL string
}

func (s WebSource) Name() string { return "web" }

func (s WebSource) Fetch(ctx context.Context, c *http.Client) ([]byte, error) {
	if c == nil {
		return nil, errors.New("http client 不能为空")
	}

	u := fmt.Sprintf("%s/%s/%s/releases", s.base(), url.PathEscape(s.Owner), url.PathEscape(s.Repo))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.New("empty response body")
	}
	return b, nil
}

func (s WebSource) Parse(raw []byte) (Release, error) {
	if len(raw) == 0 {
		return Release{}, errors.New("html 为空")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Release{}, err
	}

	marker := fmt.Sprintf("/%s/%s/releases/tag/", s.Owner, s.Repo)
	var tag string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		i := strings.Index(href, marker)
		if i < 0 {
			return true
		}
		rest := href[i+len(marker):]
		if j := strings.IndexAny(rest, "?#"); j >= 0 {
			rest = rest[:j]
		}
		t, err := url.PathUnescape(rest)
		if err != nil || strings.TrimSpace(t) == "" {
			return true
		}
		t = strings.TrimSpace(t)
		if !s.Prerelease && semver.Prerelease(normalizeTag(t)) != "" {
			// 稳定渠道跳过预发布 tag（网页列表两者混排）。
			return true
		}
		tag = t
		return false
	})
	if tag == "" {
		return Release{}, errors.New("页面中未找到 release tag（疑似返回了非 releases 页面）")
	}

	return Release{
		Tag:        tag,
		Prerelease: semver.Prerelease(normalizeTag(tag)) != "",
		PageURL:    fmt.Sprintf("%s/%s/%s/releases/tag/%s", s.base(), url.PathEscape(s.Owner), url.PathEscape(s.Repo), url.PathEscape(tag)),
	}, nil
}

func (s WebSource) base() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return "https://github.com"
}
