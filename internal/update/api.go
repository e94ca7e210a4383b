package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// APISource 通过 GitHub REST API 获取最新 release。
//
// - 稳定渠道：/releases/latest（GitHub 已排除 draft 与 prerelease）
// - 预发布渠道：/releases?per_page=20，取列表中第一个非 draft 项
type APISource struct {
	Owner string
	Repo  string

	Prerelease bool

	// BaseURL 供测试注入；为空时使用 https://api.github.com。
	BaseURL string
}

func (s APISource) Name() string { return "api" }

func (s APISource) Fetch(ctx context.Context, c *http.Client) ([]byte, error) {
	if c == nil {
		return nil, errors.New("http client 不能为空")
	}

	base := s.BaseURL
	if base == "" {
		base = "https://api.github.com"
	}
	u := fmt.Sprintf("%s/repos/%s/%s/releases/latest", base, url.PathEscape(s.Owner), url.PathEscape(s.Repo))
	if s.Prerelease {
		u = fmt.Sprintf("%s/repos/%s/%s/releases?per_page=20", base, url.PathEscape(s.Owner), url.PathEscape(s.Repo))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.New("empty response body")
	}
	return b, nil
}

func (s APISource) Parse(raw []byte) (Release, error) {
	if len(raw) == 0 {
		return Release{}, errors.New("响应为空")
	}

	if s.Prerelease {
		var list []apiRelease
		if err := json.Unmarshal(raw, &list); err != nil {
			return Release{}, err
		}
		for _, r := range list {
			if r.Draft {
				continue
			}
			return r.toRelease()
		}
		return Release{}, errors.New("列表中没有可用的 release")
	}

	var r apiRelease
	if err := json.Unmarshal(raw, &r); err != nil {
		return Release{}, err
	}
	return r.toRelease()
}

type apiRelease struct {
	TagName    string     `json:"tag_name"`
	Draft      bool       `json:"draft"`
	Prerelease bool       `json:"prerelease"`
	HTMLURL    string     `json:"html_url"`
	Assets     []apiAsset `json:"assets"`
}

type apiAsset struct {
	Name string `json:"name"`
	URL  string `json:"browser_download_url"`
}

func (r apiRelease) toRelease() (Release, error) {
	tag := strings.TrimSpace(r.TagName)
	if tag == "" {
		return Release{}, errors.New("release 缺少 tag_name")
	}

	assets := make([]Asset, 0, len(r.Assets))
	for _, a := range r.Assets {
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.URL) == "" {
			continue
		}
		assets = append(assets, Asset{Name: a.Name, URL: a.URL})
	}

	return Release{
		Tag:        tag,
		Prerelease: r.Prerelease,
		PageURL:    strings.TrimSpace(r.HTMLURL),
		Assets:     assets,
	}, nil
}
