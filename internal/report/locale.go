package report

import (
	_ "embed"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales.yaml
var localesYAML []byte

// Strings 某个语言下用于提示词和派生文本的全部文案
type Strings struct {
	Language     string            `yaml:"language"`
	SystemPrompt string            `yaml:"system_prompt"`
	Headings     map[string]string `yaml:"headings"`
	Labels       map[string]string `yaml:"labels"`
	PostTitle    string            `yaml:"post_title"`
}

// Catalog 内置语言包
type Catalog struct {
	Default string             `yaml:"default"`
	Locales map[string]Strings `yaml:"locales"`
}

// LoadCatalog 解析内置的 locales.yaml
func LoadCatalog() (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(localesYAML, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse locale catalog: %w", err)
	}
	if _, ok := cat.Locales[cat.Default]; !ok {
		return nil, fmt.Errorf("locale catalog default %q has no strings", cat.Default)
	}
	return &cat, nil
}

// LocaleSource 语言选择的依据
type LocaleSource string

const (
	LocaleFromPreference LocaleSource = "preference"
	LocaleFromOrigin     LocaleSource = "origin"
	LocaleFromDefault    LocaleSource = "default"
)

// Locale 选定的语言
type Locale struct {
	Tag     string
	Source  LocaleSource
	Strings Strings
}

// Resolver 按 偏好 > 请求来源 > 默认 的顺序选择语言
type Resolver struct {
	catalog       *Catalog
	defaultLocale string
	origins       map[string]string
}

// NewResolver origins 是部署域名到语言的映射，只接受目录中存在的语言
func NewResolver(cat *Catalog, defaultLocale string, origins map[string]string) *Resolver {
	if _, ok := cat.Locales[defaultLocale]; !ok {
		defaultLocale = cat.Default
	}

	known := make(map[string]string, len(origins))
	for host, tag := range origins {
		host = strings.ToLower(strings.TrimSpace(host))
		if host == "" {
			continue
		}
		if _, ok := cat.Locales[tag]; ok {
			known[host] = tag
		}
	}

	return &Resolver{catalog: cat, defaultLocale: defaultLocale, origins: known}
}

// Resolve preferred 为参与者保存的偏好，origin 为请求的 Origin/Referer
func (r *Resolver) Resolve(preferred, origin string) Locale {
	if tag, ok := r.match(preferred); ok {
		return r.locale(tag, LocaleFromPreference)
	}
	if host := originHost(origin); host != "" {
		// 多个域名同时命中时取最长的
		best, bestTag := "", ""
		for known, tag := range r.origins {
			if (host == known || strings.HasSuffix(host, "."+known)) && len(known) > len(best) {
				best, bestTag = known, tag
			}
		}
		if best != "" {
			return r.locale(bestTag, LocaleFromOrigin)
		}
	}
	return r.locale(r.defaultLocale, LocaleFromDefault)
}

// Strings 取某个语言的文案，未知语言回落到默认
func (r *Resolver) Strings(tag string) Locale {
	if matched, ok := r.match(tag); ok {
		return r.locale(matched, LocaleFromPreference)
	}
	return r.locale(r.defaultLocale, LocaleFromDefault)
}

func (r *Resolver) match(tag string) (string, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", false
	}
	for known := range r.catalog.Locales {
		if strings.EqualFold(known, tag) {
			return known, true
		}
	}
	// zh-Hans-CN / en-US 这类只按主语言匹配
	primary := strings.SplitN(tag, "-", 2)[0]
	for known := range r.catalog.Locales {
		if strings.EqualFold(strings.SplitN(known, "-", 2)[0], primary) {
			return known, true
		}
	}
	return "", false
}

func (r *Resolver) locale(tag string, source LocaleSource) Locale {
	return Locale{Tag: tag, Source: source, Strings: r.catalog.Locales[tag]}
}

func originHost(origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return ""
	}
	if !strings.Contains(origin, "://") {
		origin = "https://" + origin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
