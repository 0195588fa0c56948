package templates

import (
	"fmt"
	"html"
)

// DigestData holds the counts shown in the moderation digest email
type DigestData struct {
	PendingFlags  int64
	PendingImages int64
	// ReviewURL links to the moderation dashboard; omitted when empty
	ReviewURL string
}

// DigestSubject is the subject line for d
func DigestSubject(d DigestData) string {
	return fmt.Sprintf("Moderation queue: %d flagged messages, %d images to review", d.PendingFlags, d.PendingImages)
}

// RenderDigestText is the plain text part of the digest email
func RenderDigestText(d DigestData) string {
	s := fmt.Sprintf("Flagged messages waiting for review: %d\nUploaded images waiting for review: %d\n", d.PendingFlags, d.PendingImages)
	if d.ReviewURL != "" {
		s += "\nReview them at " + d.ReviewURL + "\n"
	}
	return s
}

// RenderModerationDigest generates the branded HTML for the daily moderation digest
func RenderModerationDigest(d DigestData) string {
	subject := html.EscapeString(DigestSubject(d))

	cta := ""
	if d.ReviewURL != "" {
		cta = fmt.Sprintf(`<a class="cta-button" href="%s">Open the review queue</a>`, html.EscapeString(d.ReviewURL))
	}

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #0a0a0f; }
    .container { max-width: 600px; margin: 0 auto; background-color: #12121f; }
    .header { background: linear-gradient(135deg, #f97316 0%%, #dc2626 100%%); padding: 40px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 40px 30px; color: #e5e7eb; line-height: 1.6; font-size: 15px; }
    .stat { background: rgba(249, 115, 22, 0.1); border: 1px solid rgba(249, 115, 22, 0.3); border-radius: 12px; padding: 20px; margin: 12px 0; }
    .stat strong { color: #f97316; font-size: 28px; display: block; }
    .cta-button { display: inline-block; background: linear-gradient(135deg, #f97316 0%%, #dc2626 100%%); color: #fff; padding: 14px 28px; border-radius: 8px; text-decoration: none; font-weight: 700; margin-top: 20px; }
    .footer { padding: 30px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid rgba(255,255,255,0.1); }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Moderation digest</h1>
    </div>
    <div class="content">
      <div class="stat"><strong>%d</strong>flagged messages waiting for review</div>
      <div class="stat"><strong>%d</strong>uploaded images waiting for review</div>
      %s
    </div>
    <div class="footer">
      <p>You receive this because you are on the moderation rota.</p>
    </div>
  </div>
</body>
</html>`, subject, d.PendingFlags, d.PendingImages, cta)
}
