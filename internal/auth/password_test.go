package auth

import (
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nandasafiq/hospital-management/internal"
)

var _ = ginkgo.Describe("PasswordPolicy", func() {
	var policy PasswordPolicy

	ginkgo.BeforeEach(func() {
		policy = NewPasswordPolicy(internal.SecurityConfig{
			MinPasswordLength:           8,
			MaxPasswordLength:           128,
			PasswordRequireUppercase:    true,
			PasswordRequireLowercase:    true,
			PasswordRequireDigits:       true,
			PasswordRequireSpecialChars: true,
		})
	})

	ginkgo.Describe("Validate", func() {
		ginkgo.Context("when the password satisfies every rule", func() {
			ginkgo.It("should accept it with an empty reason", func() {
				// When
				ok, reason := policy.Validate("Abcdefg1!")

				// Then
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(reason).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when the password is too short", func() {
			ginkgo.It("should reject with the length message", func() {
				// Given: satisfies every class rule but is 7 characters
				ok, reason := policy.Validate("Abc123!")

				// Then
				gomega.Expect(ok).To(gomega.BeFalse())
				gomega.Expect(reason).To(gomega.Equal("Password must be at least 8 characters long"))
			})
		})

		ginkgo.Context("when the password is too long", func() {
			ginkgo.It("should reject with the max length message", func() {
				// Given: 130 characters
				long := "Aa1!" + strings.Repeat("x", 126)

				// When
				ok, reason := policy.Validate(long)

				// Then
				gomega.Expect(ok).To(gomega.BeFalse())
				gomega.Expect(reason).To(gomega.Equal("Password must be no more than 128 characters long"))
			})
		})

		ginkgo.Context("when a character class is missing", func() {
			ginkgo.It("should name the missing uppercase letter", func() {
				ok, reason := policy.Validate("abcdefg1!")

				gomega.Expect(ok).To(gomega.BeFalse())
				gomega.Expect(reason).To(gomega.Equal("Password must contain at least one uppercase letter"))
			})

			ginkgo.It("should name the missing lowercase letter", func() {
				ok, reason := policy.Validate("ABCDEFG1!")

				gomega.Expect(ok).To(gomega.BeFalse())
				gomega.Expect(reason).To(gomega.Equal("Password must contain at least one lowercase letter"))
			})

			ginkgo.It("should name the missing digit", func() {
				ok, reason := policy.Validate("Abcdefgh!")

				gomega.Expect(ok).To(gomega.BeFalse())
				gomega.Expect(reason).To(gomega.Equal("Password must contain at least one digit"))
			})

			ginkgo.It("should name the missing special character", func() {
				ok, reason := policy.Validate("Abcdefg12")

				gomega.Expect(ok).To(gomega.BeFalse())
				gomega.Expect(reason).To(gomega.Equal("Password must contain at least one special character"))
			})
		})

		ginkgo.Context("when rules fail in combination", func() {
			ginkgo.It("should report the first failing rule only", func() {
				// Given: short and missing every class
				ok, reason := policy.Validate("ab")

				// Then
				gomega.Expect(ok).To(gomega.BeFalse())
				gomega.Expect(reason).To(gomega.Equal("Password must be at least 8 characters long"))
			})
		})

		ginkgo.Context("when the password is on the denylist", func() {
			ginkgo.It("should reject a common password case-insensitively", func() {
				// Given: a permissive policy so only the denylist applies
				loose := PasswordPolicy{MinLength: 1, MaxLength: 128}

				ok, reason := loose.Validate("PaSsWoRd")

				gomega.Expect(ok).To(gomega.BeFalse())
				gomega.Expect(reason).To(gomega.Equal("Password is too common. Please choose a stronger password"))
			})

			ginkgo.It("should reject each denylisted entry", func() {
				loose := PasswordPolicy{MinLength: 1, MaxLength: 128}

				for _, weak := range []string{
					"password", "123456", "admin", "qwerty", "letmein",
					"welcome", "monkey", "dragon", "master", "football",
				} {
					ok, _ := loose.Validate(weak)
					gomega.Expect(ok).To(gomega.BeFalse(), "expected %q to be rejected", weak)
				}
			})
		})

		ginkgo.Context("when class requirements are switched off", func() {
			ginkgo.It("should only enforce length and the denylist", func() {
				// Given
				loose := NewPasswordPolicy(internal.SecurityConfig{
					MinPasswordLength: 8,
					MaxPasswordLength: 128,
				})

				// When
				ok, reason := loose.Validate("abcdefgh")

				// Then
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(reason).To(gomega.BeEmpty())
			})
		})
	})
})
