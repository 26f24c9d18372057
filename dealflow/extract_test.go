package dealflow

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const warmIntroEmail = "From: Priya Shah <priya@angels.example>\r\n" +
	"To: deals@fund.example\r\n" +
	"Subject: Intro: Verdant is raising\r\n" +
	"Date: Mon, 02 Jun 2025 10:00:00 +0000\r\n" +
	"Message-ID: <intro-1@angels.example>\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Hi! I am introducing you to Verdant, a climate startup closing a Series A.\r\n" +
	"CEO: Maya Rao, formerly at Tesla, Stanford graduate.\r\n" +
	"Arjun Mehta, co-founder, led the carbon team at Google.\r\n"

const multipartEmail = "From: founder@nimbus.example\r\n" +
	"Subject: Company: Nimbus\r\n" +
	"Date: Tue, 03 Jun 2025 09:00:00 +0000\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=XYZ\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>html version</p>\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"Content-Transfer-Encoding: quoted-printable\r\n" +
	"\r\n" +
	"We closed a pre-seed round for our cloud payments company.=\r\n" +
	" Founder Lena Park.\r\n" +
	"--XYZ--\r\n"

func TestExtractWarmIntro(t *testing.T) {
	t.Parallel()

	d, ok, err := NewExtractor(nil).Extract(strings.NewReader(warmIntroEmail))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "Verdant", d.CompanyName)
	assert.Equal(t, "priya@angels.example", d.Sender)
	assert.Equal(t, "Intro: Verdant is raising", d.Subject)
	assert.Equal(t, "intro-1@angels.example", d.MessageID)
	assert.True(t, d.ReceivedAt.Equal(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "series a", d.FundingStage)
	assert.Equal(t, []string{"climate_tech"}, d.Sectors)
	assert.True(t, d.WarmIntro)
	assert.Equal(t, []string{"Maya Rao", "Arjun Mehta"}, d.Team.Founders)
	assert.Equal(t, []string{"Tesla"}, d.Team.PreviousCompanies)
	assert.Equal(t, []string{"Stanford", "former", "led"}, d.Team.Background)
	assert.Contains(t, d.RawContent, "CEO: Maya Rao")
}

func TestExtractMultipart(t *testing.T) {
	t.Parallel()

	d, ok, err := NewExtractor(nil).Extract(strings.NewReader(multipartEmail))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "Nimbus", d.CompanyName)
	assert.Equal(t, "pre-seed", d.FundingStage)
	assert.Equal(t, []string{"fintech", "saas"}, d.Sectors)
	assert.False(t, d.WarmIntro)
	assert.Equal(t, []string{"Lena Park"}, d.Team.Founders)
	assert.NotContains(t, d.RawContent, "html version")
}

func TestFromText(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil)

	tests := []struct {
		name    string
		subject string
		body    string
		ok      bool
		company string
		stage   string
	}{
		{name: "no startup indicator", subject: "Lunch", body: "Introducing Bob to the team", ok: false},
		{name: "no company name", subject: "Hello", body: "we raised money last year", ok: false},
		{name: "startup label", subject: "", body: "Startup: Orbit just raised", ok: true, company: "Orbit", stage: StageUnknown},
		{name: "pronoun skipped", subject: "", body: "introducing you to Kite, a seed company", ok: true, company: "Kite", stage: "seed"},
		{name: "subject is searched", subject: "Quanta is raising", body: "a venture in growth stage", ok: true, company: "Quanta", stage: "growth"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, ok := e.FromText(tt.subject, tt.body)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.company, d.CompanyName)
			assert.Equal(t, tt.stage, d.FundingStage)
		})
	}
}

func TestExtractMalformed(t *testing.T) {
	t.Parallel()

	_, _, err := NewExtractor(nil).Extract(iotest.ErrReader(errors.New("connection reset")))
	assert.Error(t, err)
}
