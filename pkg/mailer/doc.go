// Package mailer provides the provider-agnostic pieces of outbound email:
// the [Sender] interface, the placeholder renderer, template stores and
// subject policies.
//
// # Rendering
//
// Templates are plain HTML documents with {{ name }} placeholders. [Render]
// replaces every bound name and blanks the four standard fields
// (firstName, senderName, senderEmail, personalNote) when they are unbound.
// Any other token is left alone, so a template may carry markup that looks
// like a placeholder without being touched:
//
//	html := mailer.Render(body, mailer.Fields{
//		mailer.FieldFirstName:  "Ada",
//		mailer.FieldSenderName: "Noah",
//	})
//
// # Template stores
//
// [TemplateStore] is read-only. [FSStore] serves a directory or any fs.FS;
// the s3store subpackage serves a bucket prefix. Only files with the .html
// extension are listed.
//
// # Subjects
//
// Two [SubjectPolicy] implementations exist. [DerivedSubjects] builds the
// subject from the template name and the contact's first name; [SubjectMap]
// is a hand-authored table loaded from YAML:
//
//	motorhome_followup.html: "RV Hauling - Great Connecting with You"
//	final_check.html: "Happy to reconnect later if needed"
//
// # Providers
//
// Provider adapters live in subpackages: resend (Resend HTTP API) and smtp
// (any SMTP relay).
package mailer
