package normalize

import (
	"errors"
	"reflect"
	"testing"
)

func normalizeString(t *testing.T, in string) []Conversation {
	t.Helper()

	convs, err := NormalizeBytes([]byte(in), "export")
	if err != nil {
		t.Fatalf("NormalizeBytes: %v", err)
	}
	return convs
}

func TestNormalize_FlatMessageList(t *testing.T) {
	t.Parallel()

	convs := normalizeString(t, `[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]`)
	if len(convs) != 1 {
		t.Fatalf("len(convs)=%d, want 1", len(convs))
	}
	if convs[0].Title != "export" || !convs[0].FallbackTitle {
		t.Fatalf("title=%q fallback=%v, want export/true", convs[0].Title, convs[0].FallbackTitle)
	}
	want := []Turn{{RoleUser, "hi"}, {RoleAssistant, "hello"}}
	if !reflect.DeepEqual(convs[0].Turns, want) {
		t.Fatalf("turns=%+v, want %+v", convs[0].Turns, want)
	}
}

func TestNormalize_MappingObject(t *testing.T) {
	t.Parallel()

	convs := normalizeString(t, `{"mapping":{"root":{"children":["n1"]},"n1":{"message":{"role":"user","content":"hi"},"children":["n2"]},"n2":{"message":{"role":"assistant","content":"hey"},"children":[]}}}`)
	if len(convs) != 1 {
		t.Fatalf("len(convs)=%d, want 1", len(convs))
	}
	want := []Turn{{RoleUser, "hi"}, {RoleAssistant, "hey"}}
	if !reflect.DeepEqual(convs[0].Turns, want) {
		t.Fatalf("turns=%+v, want %+v", convs[0].Turns, want)
	}
}

func TestNormalize_ListOfConversations(t *testing.T) {
	t.Parallel()

	convs := normalizeString(t, `[
		{"title":"  First  ","messages":[{"role":"user","content":"a"}]},
		{"name":"Second","chat_messages":[{"sender":"human","text":"b"},{"sender":"assistant","text":"c"}]},
		{"mapping":{}},
		"skipped",
		[{"role":"user","content":"d"}]
	]`)
	if len(convs) != 4 {
		t.Fatalf("len(convs)=%d, want 4", len(convs))
	}
	if convs[0].Title != "First" || convs[0].FallbackTitle {
		t.Fatalf("convs[0].Title=%q", convs[0].Title)
	}
	if convs[1].Title != "Second" || len(convs[1].Turns) != 2 {
		t.Fatalf("convs[1]=%+v", convs[1])
	}
	if convs[2].Title != "export-3" || len(convs[2].Turns) != 0 || convs[2].Turns == nil {
		t.Fatalf("convs[2]=%+v, want empty turns titled export-3", convs[2])
	}
	if convs[3].Title != "export-5" || len(convs[3].Turns) != 1 {
		t.Fatalf("convs[3]=%+v, want export-5 with one turn", convs[3])
	}
}

func TestNormalize_CollectionContainer(t *testing.T) {
	t.Parallel()

	convs := normalizeString(t, `{"data":[{"topic":"T1","history":{"currentId":"2","messages":{"1":{"role":"user","content":"q"},"2":{"parentId":"1","role":"assistant","content":"a"}}}},{"subject":"T2","chat":{"messages":[{"role":"user","content":"x"}]}}]}`)
	if len(convs) != 2 {
		t.Fatalf("len(convs)=%d, want 2", len(convs))
	}
	if convs[0].Title != "T1" || !reflect.DeepEqual(convs[0].Turns, []Turn{{RoleUser, "q"}, {RoleAssistant, "a"}}) {
		t.Fatalf("convs[0]=%+v", convs[0])
	}
	if convs[1].Title != "T2" || !reflect.DeepEqual(convs[1].Turns, []Turn{{RoleUser, "x"}}) {
		t.Fatalf("convs[1]=%+v", convs[1])
	}
}

func TestNormalize_CollectionMessageListUsesDocumentTitle(t *testing.T) {
	t.Parallel()

	convs := normalizeString(t, `{"title":"Session","items":[{"role":"user","content":"a"},{"role":"bot","content":"b"}]}`)
	if len(convs) != 1 || convs[0].Title != "Session" || len(convs[0].Turns) != 2 {
		t.Fatalf("convs=%+v", convs)
	}
}

func TestNormalize_CollectionFallsThroughWhenNoConversations(t *testing.T) {
	t.Parallel()

	// "data" holds scalars only, so the object itself is read as a conversation.
	convs := normalizeString(t, `{"data":[1,2,3],"messages":[{"role":"user","content":"m"}]}`)
	if len(convs) != 1 || !reflect.DeepEqual(convs[0].Turns, []Turn{{RoleUser, "m"}}) {
		t.Fatalf("convs=%+v", convs)
	}
}

func TestNormalize_MappingAndListAreAdditive(t *testing.T) {
	t.Parallel()

	convs := normalizeString(t, `{"mapping":{"root":{"children":["n"]},"n":{"message":{"role":"user","content":"from mapping"}}},"turns":[{"role":"assistant","content":"from list"}],"history":[{"role":"user","content":"ignored"}]}`)
	want := []Turn{{RoleUser, "from mapping"}, {RoleAssistant, "from list"}}
	if !reflect.DeepEqual(convs[0].Turns, want) {
		t.Fatalf("turns=%+v, want %+v", convs[0].Turns, want)
	}
}

func TestNormalize_FallbackStrategies(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want []Turn
	}{
		{
			name: "chat bare message",
			in:   `{"chat":{"role":"user","content":"solo"}}`,
			want: []Turn{{RoleUser, "solo"}},
		},
		{
			name: "chat history",
			in:   `{"chat":{"history":[{"role":"user","content":"h"}]}}`,
			want: []Turn{{RoleUser, "h"}},
		},
		{
			name: "conversation list",
			in:   `{"conversation":[{"question":"q","answer":"a"}]}`,
			want: []Turn{{RoleUser, "q"}, {RoleAssistant, "a"}},
		},
		{
			name: "conversation container",
			in:   `{"conversation":{"messages":[{"role":"assistant","content":"c"}]}}`,
			want: []Turn{{RoleAssistant, "c"}},
		},
		{
			name: "history wins over chat",
			in:   `{"history":{"messages":[{"role":"user","content":"hist"}]},"chat":{"role":"user","content":"chat"}}`,
			want: []Turn{{RoleUser, "hist"}},
		},
		{
			name: "deepseek fragments",
			in:   `{"title":"ds","mapping":{"root":{"children":["1"]},"1":{"message":{"fragments":[{"type":"REQUEST","content":"q"},{"type":"THINK","content":"..."},{"type":"RESPONSE","content":"a"}]},"children":[]}}}`,
			want: []Turn{{RoleUser, "q"}, {RoleAssistant, "a"}},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			convs := normalizeString(t, tc.in)
			if len(convs) != 1 {
				t.Fatalf("len(convs)=%d, want 1", len(convs))
			}
			if !reflect.DeepEqual(convs[0].Turns, tc.want) {
				t.Fatalf("turns=%+v, want %+v", convs[0].Turns, tc.want)
			}
		})
	}
}

func TestNormalize_SingleMessageObject(t *testing.T) {
	t.Parallel()

	convs := normalizeString(t, `{"title":"ignored for single message","question":"q","answer":"a"}`)
	if len(convs) != 1 {
		t.Fatalf("len(convs)=%d, want 1", len(convs))
	}
	// Only the single-message wrap recognizes a bare paired-field record.
	want := []Turn{{RoleUser, "q"}, {RoleAssistant, "a"}}
	if convs[0].Title != "export" || !reflect.DeepEqual(convs[0].Turns, want) {
		t.Fatalf("conv=%+v, want title export with turns %+v", convs[0], want)
	}
}

func TestNormalize_UnsupportedSchema(t *testing.T) {
	t.Parallel()

	for _, in := range []string{`{"foo":"bar"}`, `"just a string"`, `42`, `[]`, `["a","b","c"]`} {
		_, err := NormalizeBytes([]byte(in), "x")
		if !errors.Is(err, ErrUnsupportedSchema) {
			t.Fatalf("NormalizeBytes(%s) err=%v, want ErrUnsupportedSchema", in, err)
		}
	}
}

func TestNormalizeBytes_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := NormalizeBytes([]byte(`{"broken":`), "x")
	if !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("err=%v, want ErrInvalidJSON", err)
	}
}

func TestNormalize_DoesNotDependOnSiblings(t *testing.T) {
	t.Parallel()

	alone := normalizeString(t, `[{"role":"assistant","content":"x"}]`)
	withSibling := normalizeString(t, `[{"role":"user","content":"u"},{"role":"assistant","content":"x"}]`)
	if alone[0].Turns[0] != withSibling[0].Turns[1] {
		t.Fatalf("classification changed with siblings: %+v vs %+v", alone[0].Turns[0], withSibling[0].Turns[1])
	}
}
