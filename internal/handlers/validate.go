package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for post, comment, category, and account fields.
const (
	maxTitleLen        = 30
	maxHookLen         = 100
	maxContentLen      = 100_000
	maxCommentLen      = 5_000
	maxCategoryNameLen = 50
	maxCategorySlugLen = 200
	maxTagNameLen      = 50
	maxUsernameLen     = 150
	minPasswordLen     = 8
)

// validatePost checks post form inputs and returns the first error found.
func validatePost(title, hookText, content string, tagNames []string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 30 characters)."
	}
	if utf8.RuneCountInString(hookText) > maxHookLen {
		return "Hook text is too long (max 100 characters)."
	}
	if strings.TrimSpace(content) == "" {
		return "Content is required."
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "Content is too long (max 100,000 characters)."
	}
	for _, name := range tagNames {
		if utf8.RuneCountInString(name) > maxTagNameLen {
			return "Tag \"" + name + "\" is too long (max 50 characters)."
		}
	}
	return ""
}

// validateComment checks the comment body.
func validateComment(content string) string {
	if strings.TrimSpace(content) == "" {
		return "Comment cannot be empty."
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "Comment is too long (max 5,000 characters)."
	}
	return ""
}

// validateCategory checks category form inputs. An empty slug is allowed
// and generated from the name.
func validateCategory(name, categorySlug string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "Category name is too long (max 50 characters)."
	}
	if utf8.RuneCountInString(categorySlug) > maxCategorySlugLen {
		return "Category slug is too long (max 200 characters)."
	}
	return ""
}

// validateSignup checks the registration form.
func validateSignup(username, password, password2 string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return "Username is required."
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "Username is too long (max 150 characters)."
	}
	if strings.ContainsAny(username, " \t\r\n/") {
		return "Username may not contain spaces or slashes."
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	if password != password2 {
		return "Passwords do not match."
	}
	return ""
}
