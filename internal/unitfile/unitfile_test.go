package unitfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleUnit = `# A quadlet container definition.
[Unit]
Requires=quipucords-db.service
Requires=quipucords-redis.service
After=quipucords-db.service

[Container]
ContainerName=quipucords-app
Image=quay.io/quipucords/quipucords:latest
Secret=quipucords-db-password,type=env,target=QUIPUCORDS_DBMS_PASSWORD

[Install]
WantedBy=default.target
`

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("repeated_keys_accumulate_in_order", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseBytes([]byte(sampleUnit), Options{})
		require.NoError(t, err)

		unit, ok := doc.Section("Unit")
		require.True(t, ok)
		values, ok := unit.Values("Requires")
		require.True(t, ok)
		assert.Equal(t, []string{"quipucords-db.service", "quipucords-redis.service"}, values)
	})

	t.Run("section_order_is_preserved", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseBytes([]byte(sampleUnit), Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Unit", "Container", "Install"}, doc.SectionNames())
	})

	t.Run("comments_and_blank_lines_are_skipped", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseBytes([]byte("# comment\n; also a comment\n\n[A]\nk=v\n"), Options{})
		require.NoError(t, err)
		section, ok := doc.Section("A")
		require.True(t, ok)
		values, _ := section.Values("k")
		assert.Equal(t, []string{"v"}, values)
	})

	t.Run("repeated_section_header_reopens_the_section", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseBytes([]byte("[A]\nk=1\n[B]\nx=y\n[A]\nk=2\n"), Options{})
		require.NoError(t, err)
		section, _ := doc.Section("A")
		values, _ := section.Values("k")
		assert.Equal(t, []string{"1", "2"}, values)
		assert.Equal(t, []string{"A", "B"}, doc.SectionNames())
	})

	t.Run("option_before_section_fails", func(t *testing.T) {
		t.Parallel()
		_, err := ParseBytes([]byte("k=v\n[A]\n"), Options{})
		var parseErr ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, 1, parseErr.Line)
	})

	t.Run("bare_option_fails_unless_allowed", func(t *testing.T) {
		t.Parallel()
		input := []byte("[Service]\nNoNewPrivileges\n")

		_, err := ParseBytes(input, Options{})
		assert.Error(t, err)

		doc, err := ParseBytes(input, Options{AllowNoValue: true})
		require.NoError(t, err)
		section, _ := doc.Section("Service")
		values, ok := section.Values("NoNewPrivileges")
		assert.True(t, ok)
		assert.Nil(t, values)
	})

	t.Run("empty_section_name_fails", func(t *testing.T) {
		t.Parallel()
		_, err := ParseBytes([]byte("[]\n"), Options{})
		assert.Error(t, err)
	})

	t.Run("whitespace_around_key_and_value_is_trimmed", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseBytes([]byte("[A]\n  k = v \n"), Options{})
		require.NoError(t, err)
		section, _ := doc.Section("A")
		values, _ := section.Values("k")
		assert.Equal(t, []string{"v"}, values)
	})
}

func TestSectionSet(t *testing.T) {
	t.Parallel()

	t.Run("replaces_accumulated_values_wholesale", func(t *testing.T) {
		t.Parallel()
		doc := NewDocument(Options{})
		section := doc.EnsureSection("Unit")
		section.Append("Requires", "a.service")
		section.Append("Requires", "b.service")
		section.Append("Requires", "c.service")

		section.Set("Requires", []string{"d.service"})

		values, _ := section.Values("Requires")
		assert.Equal(t, []string{"d.service"}, values)
	})

	t.Run("new_key_keeps_insertion_order", func(t *testing.T) {
		t.Parallel()
		doc := NewDocument(Options{})
		section := doc.EnsureSection("Unit")
		section.Append("After", "x.service")
		section.Set("Wants", []string{"y.service"})

		assert.Equal(t, []string{"After", "Wants"}, section.Keys())
	})
}

func TestWrite(t *testing.T) {
	t.Parallel()

	t.Run("round_trips_repeated_keys", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseBytes([]byte(sampleUnit), Options{})
		require.NoError(t, err)

		serialized := doc.Bytes()
		reparsed, err := ParseBytes(serialized, Options{})
		require.NoError(t, err)

		assert.Equal(t, doc.SectionNames(), reparsed.SectionNames())
		for _, name := range doc.SectionNames() {
			original, _ := doc.Section(name)
			copied, _ := reparsed.Section(name)
			assert.Equal(t, original.Keys(), copied.Keys())
			for _, key := range original.Keys() {
				want, _ := original.Values(key)
				got, _ := copied.Values(key)
				assert.Equal(t, want, got)
			}
		}
	})

	t.Run("serializes_without_spaces_around_equals", func(t *testing.T) {
		t.Parallel()
		doc := NewDocument(Options{})
		doc.EnsureSection("Unit").Append("Requires", "a.service")
		assert.Equal(t, "[Unit]\nRequires=a.service\n\n", string(doc.Bytes()))
	})

	t.Run("writes_bare_options_without_equals", func(t *testing.T) {
		t.Parallel()
		doc := NewDocument(Options{AllowNoValue: true})
		doc.EnsureSection("Service").Set("NoNewPrivileges", nil)
		serialized := string(doc.Bytes())
		assert.Contains(t, serialized, "NoNewPrivileges\n")
		assert.False(t, strings.Contains(serialized, "NoNewPrivileges="))
	})
}
