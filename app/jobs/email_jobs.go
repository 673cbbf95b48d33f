// Package jobs defines the queued background jobs: the storefront's
// transactional emails. Register must be called once at boot so workers can
// deserialise them.
package jobs

import (
	"fmt"
	"strings"

	"github.com/lumenera/backend/pkg/mail"
	"github.com/lumenera/backend/pkg/queue"
)

// Register makes all job types known to the queue manager.
func Register() {
	queue.Register("*jobs.PurchaseEmailJob", func() queue.Job { return &PurchaseEmailJob{} })
	queue.Register("*jobs.SubscriptionEmailJob", func() queue.Job { return &SubscriptionEmailJob{} })
	queue.Register("*jobs.PasswordResetEmailJob", func() queue.Job { return &PasswordResetEmailJob{} })
}

// ─── Purchase confirmation ────────────────────────────────────────────────────

// PurchaseEmailJob sends the order confirmation listing the purchased cards.
// Images line up with Names; an empty image slot is skipped in the markup.
type PurchaseEmailJob struct {
	To     string   `json:"to"`
	Names  []string `json:"names"`
	Images []string `json:"images"`
}

func (j *PurchaseEmailJob) Handle() error {
	return mail.To(j.To).
		Subject("DELIVERED: Your Lumenera Cards").
		Body(j.body()).
		Send()
}

func (j *PurchaseEmailJob) body() string {
	var images strings.Builder
	for _, img := range j.Images {
		if img == "" {
			continue
		}
		fmt.Fprintf(&images, `<img src=%q alt="card" width="200" />`, img)
	}
	return fmt.Sprintf(`<p>Esteemed Seeker,</p>
<p>We extend our deepest gratitude for venturing into the realm of <strong>Lumenera</strong> and acquiring the following treasures:</p>
<p>%s</p>
<p>Here are the artifacts you have claimed:</p>
<div>%s</div>
<p>May these treasures inspire you, as they have inspired those who dared to dream of the extraordinary.</p>
<p>Guard them well, for such power is not to be taken lightly.</p>
<p>Should you seek further wonders, know that the gates of Lumenera remain ever open to the brave and curious.</p>
<p>With the utmost regard,<br>The Lumenera Custodians</p>`,
		strings.Join(j.Names, ", "), images.String())
}

// ─── Subscription welcome ─────────────────────────────────────────────────────

// SubscriptionEmailJob welcomes a newsletter subscriber.
type SubscriptionEmailJob struct {
	To string `json:"to"`
}

func (j *SubscriptionEmailJob) Handle() error {
	return mail.To(j.To).
		Subject("Welcome to Lumenera").
		Body(`<p>Esteemed Seeker,</p>
<p>Your name has been inscribed among those who watch the gates of <strong>Lumenera</strong>.</p>
<p>Whenever new treasures surface, word will reach you first.</p>
<p>With the utmost regard,<br>The Lumenera Custodians</p>`).
		Send()
}

// ─── Password reset ───────────────────────────────────────────────────────────

// PasswordResetEmailJob carries the reset link with its one-hour token.
type PasswordResetEmailJob struct {
	To       string `json:"to"`
	ResetURL string `json:"resetUrl"`
}

func (j *PasswordResetEmailJob) Handle() error {
	return mail.To(j.To).
		Subject("Lumenera Password Reset").
		Body(fmt.Sprintf(`<p>Esteemed Seeker,</p>
<p>A request was made to restore your passage into <strong>Lumenera</strong>.</p>
<p><a href=%q>Reset your password</a> — the link holds for one hour.</p>
<p>If this request was not yours, no action is needed; your key remains unchanged.</p>
<p>With the utmost regard,<br>The Lumenera Custodians</p>`, j.ResetURL)).
		Send()
}
