package normalize

import (
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"

	"github.com/sells-group/lead-engine/internal/model"
)

// DefaultRegion is used when no phone region is configured.
const DefaultRegion = "DE"

// UnknownSource is recorded for raw records that name no source.
const UnknownSource = "unknown"

// Normalizer converts raw collector records into canonical leads. It owns the
// country prefix used to internationalize national phone numbers.
type Normalizer struct {
	region string
	prefix string
}

// New returns a Normalizer for the given ISO 3166 region. Unknown or empty
// regions fall back to DefaultRegion.
func New(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	code := phonenumbers.GetCountryCodeForRegion(region)
	if code == 0 {
		if region != "" {
			zap.L().Warn("normalize: unknown phone region, using default",
				zap.String("region", region),
				zap.String("default", DefaultRegion),
			)
		}
		region = DefaultRegion
		code = phonenumbers.GetCountryCodeForRegion(region)
	}
	return &Normalizer{region: region, prefix: "+" + strconv.Itoa(code)}
}

// Region returns the ISO region the normalizer was built for.
func (n *Normalizer) Region() string { return n.region }

// Prefix returns the default country prefix, e.g. "+49".
func (n *Normalizer) Prefix() string { return n.prefix }

// CleanPhone keeps digits and a single leading +, rewrites national numbers
// (leading 0) and long bare numbers with the default prefix, and accepts 7 to
// 15 digits.
func (n *Normalizer) CleanPhone(raw string) (string, bool) {
	cleaned := phoneStrip.ReplaceAllString(raw, "")
	if cleaned == "" {
		return "", false
	}
	international := strings.HasPrefix(cleaned, "+")
	cleaned = strings.ReplaceAll(cleaned, "+", "")
	if international {
		cleaned = "+" + cleaned
	}

	switch {
	case strings.HasPrefix(cleaned, "+"):
	case strings.HasPrefix(cleaned, "0"):
		cleaned = n.prefix + cleaned[1:]
	case len(cleaned) >= 10:
		cleaned = n.prefix + cleaned
	}

	digits := len(DigitsOnly(cleaned))
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return "", false
	}
	return cleaned, true
}

// Normalize builds a canonical lead from a raw record. Invalid optional fields
// are left nil. It reports false only when the record carries no name.
func (n *Normalizer) Normalize(raw model.RawRecord) (model.Lead, bool) {
	name, ok := raw.String("name")
	if !ok {
		return model.Lead{}, false
	}

	lead := model.Lead{Name: name}
	lead.ID, _ = raw.String("id")

	lead.SourceURL, _ = raw.String("source_url")
	lead.Platform, _ = raw.String("platform")
	lead.Source, _ = raw.String("source")
	if lead.Source == "" {
		lead.Source = UnknownSource
	}

	if s, ok := raw.String("email"); ok {
		if email, valid := CleanEmail(s); valid {
			lead.Email = &email
		}
	}
	if s, ok := raw.String("phone"); ok {
		if phone, valid := n.CleanPhone(s); valid {
			lead.Phone = &phone
		}
	}
	if s, ok := raw.String("website"); ok {
		if site, valid := CleanURL(s); valid {
			lead.Website = &site
		}
	}

	lead.Address = optionalString(raw, "address")
	lead.Location = optionalString(raw, "location")
	lead.BusinessType = optionalString(raw, "business_type")
	lead.Industry = optionalString(raw, "industry")
	lead.Notes, _ = raw.String("notes")

	if rev, ok := raw.Float("revenue_estimate"); ok && rev > 0 {
		lead.RevenueEstimate = &rev
	}
	lead.Verified = raw.Bool("verified")
	lead.AutoIntegrated = raw.Bool("auto_integrated")
	if v, ok := raw.Float("ai_score"); ok {
		lead.AIScore = &v
	}
	if v, ok := raw.Float("quality_score"); ok {
		lead.QualityScore = &v
	}

	for platform, handle := range raw.StringMap("social_handles") {
		handle = strings.TrimSpace(handle)
		if !ValidateSocialHandle(platform, handle) {
			zap.L().Debug("normalize: dropping social handle",
				zap.String("platform", platform),
				zap.String("handle", handle),
			)
			continue
		}
		lead.AddSocialHandle(strings.ToLower(platform), handle)
	}
	for _, tag := range raw.StringSlice("pain_points") {
		lead.AddPainPoint(tag)
	}
	if f, ok := raw.Int("followers"); ok && f >= 0 {
		lead.Followers = &f
	}
	if er, ok := raw.Float("engagement_rate"); ok && er >= 0 && er <= 1 {
		lead.EngagementRate = &er
	}
	lead.Tags = raw.StringSlice("tags")

	if s, ok := raw.String("created_at"); ok {
		lead.CreatedAt = model.TimestampFrom(s)
	}
	return lead, true
}

func optionalString(raw model.RawRecord, key string) *string {
	if s, ok := raw.String(key); ok {
		return &s
	}
	return nil
}
