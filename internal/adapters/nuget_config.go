package adapters

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"nuget-restore/internal/ports"
	"nuget-restore/internal/types"
)

const nugetConfigDirName = "nuget-restore"
const nugetConfigFileName = "nuget.config"
const internalFeedUsername = "VssSessionToken"

const emptyNuGetConfig = `<?xml version="1.0" encoding="utf-8"?>
<configuration>
  <packageSources>
  </packageSources>
</configuration>
`

type NuGetConfigAdapter struct {
	TempRoot string
}

func NewNuGetConfigAdapter(tempRoot string) NuGetConfigAdapter {
	return NuGetConfigAdapter{TempRoot: tempRoot}
}

func (a NuGetConfigAdapter) Prepare(ctx context.Context, req ports.ConfigPrepareRequest) (ports.ConfigHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	userPath := strings.TrimSpace(req.UserConfigPath)
	if userPath != "" {
		info, err := os.Stat(userPath)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("nuget config file not found: %s", userPath)).
				WithCause(err)
		}
		if info.IsDir() {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("nuget config path is a directory: %s", userPath))
		}
		if abs, err := filepath.Abs(userPath); err == nil {
			userPath = abs
		}
	}
	root := strings.TrimSpace(a.TempRoot)
	if root == "" {
		root = os.TempDir()
	}
	handle := &nugetConfigHandle{
		tempDir:  filepath.Join(root, nugetConfigDirName, uuid.NewString()),
		userPath: userPath,
		mode:     req.Mode,
		auth:     req.Auth,
	}
	log.Ctx(ctx).Debug().
		Str("mode", string(req.Mode)).
		Str("user_config", userPath).
		Str("temp_config", handle.tempPath()).
		Msg("nuget config prepared")
	return handle, nil
}

type nugetConfigHandle struct {
	tempDir  string
	userPath string
	mode     types.FeedSelectionMode
	auth     types.AuthenticationDescriptor
	created  bool
	cleaned  bool
}

func (h *nugetConfigHandle) tempPath() string {
	return filepath.Join(h.tempDir, nugetConfigFileName)
}

func (h *nugetConfigHandle) AddSources(ctx context.Context, sources []types.PackageSource) error {
	if len(sources) == 0 {
		log.Ctx(ctx).Debug().Msg("no sources were added to the temp nuget config")
		return nil
	}
	doc, err := h.load()
	if err != nil {
		return err
	}
	doc.addSources(sources)
	if err := h.save(doc); err != nil {
		return err
	}
	names := make([]string, 0, len(sources))
	for _, source := range sources {
		names = append(names, source.Name)
	}
	log.Ctx(ctx).Debug().Str("sources", strings.Join(names, ";")).Msg("sources added to the temp nuget config")
	return nil
}

func (h *nugetConfigHandle) WriteCredentials(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !h.created && h.userPath == "" {
		log.Ctx(ctx).Debug().Msg("no nuget config to write credentials to")
		return nil
	}
	doc, err := h.load()
	if err != nil {
		return err
	}
	written := doc.applyCredentials(ctx, h.auth)
	if written == 0 {
		log.Ctx(ctx).Debug().Msg("no credentials were written to the nuget config")
		return nil
	}
	if err := h.save(doc); err != nil {
		return err
	}
	log.Ctx(ctx).Debug().Int("sources", written).Msg("credentials written to the temp nuget config")
	return nil
}

func (h *nugetConfigHandle) ResolvedConfigPath() string {
	if h.created {
		return h.tempPath()
	}
	if h.mode == types.FeedSelectionConfig {
		return h.userPath
	}
	return ""
}

func (h *nugetConfigHandle) Cleanup() error {
	if h.cleaned {
		return nil
	}
	h.cleaned = true
	if !h.created {
		return nil
	}
	if err := os.RemoveAll(h.tempDir); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove temp nuget config").
			WithCause(err)
	}
	return nil
}

// load returns the working document: the temp config once it exists, the
// user config in config mode, or an empty config. Relative paths in the user
// config are rooted at its directory since the copy lives elsewhere.
func (h *nugetConfigHandle) load() (*xmlNode, error) {
	if h.created {
		return readNuGetConfig(h.tempPath())
	}
	if h.userPath != "" {
		doc, err := readNuGetConfig(h.userPath)
		if err != nil {
			return nil, err
		}
		doc.resolveRelativePaths(filepath.Dir(h.userPath))
		return doc, nil
	}
	return parseNuGetConfig([]byte(emptyNuGetConfig))
}

// save always targets the temp path so the user config is never modified.
func (h *nugetConfigHandle) save(doc *xmlNode) error {
	if h.cleaned {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("nuget config was already cleaned up")
	}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode nuget config").
			WithCause(err)
	}
	if err := os.MkdirAll(h.tempDir, 0700); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create temp nuget config directory").
			WithCause(err)
	}
	h.created = true
	content := append([]byte(xml.Header), data...)
	content = append(content, '\n')
	if err := os.WriteFile(h.tempPath(), content, 0600); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write temp nuget config").
			WithCause(err)
	}
	return nil
}

func readNuGetConfig(path string) (*xmlNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("failed to read nuget config: %s", path)).
			WithCause(err)
	}
	return parseNuGetConfig(data)
}

func parseNuGetConfig(data []byte) (*xmlNode, error) {
	var doc xmlNode
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse nuget config").
			WithCause(err)
	}
	if doc.XMLName.Local != "configuration" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("nuget config root element must be configuration")
	}
	return &doc, nil
}

// xmlNode keeps elements and attributes of a nuget config. Character data is
// dropped; nuget stores all settings in attributes.
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []xmlNode  `xml:",any"`
}

func newKeyValueNode(key string, value string) xmlNode {
	return xmlNode{
		XMLName: xml.Name{Local: "add"},
		Attrs: []xml.Attr{
			{Name: xml.Name{Local: "key"}, Value: key},
			{Name: xml.Name{Local: "value"}, Value: value},
		},
	}
}

func (n *xmlNode) attr(name string) string {
	for _, attr := range n.Attrs {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

func (n *xmlNode) child(name string) *xmlNode {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == name {
			return &n.Nodes[i]
		}
	}
	return nil
}

func (n *xmlNode) ensureChild(name string) *xmlNode {
	if existing := n.child(name); existing != nil {
		return existing
	}
	n.Nodes = append(n.Nodes, xmlNode{XMLName: xml.Name{Local: name}})
	return &n.Nodes[len(n.Nodes)-1]
}

func (n *xmlNode) addSources(sources []types.PackageSource) {
	section := n.ensureChild("packageSources")
	for _, source := range sources {
		section.Nodes = append(section.Nodes, newKeyValueNode(source.Name, source.URI))
	}
}

// packageSources lists the effective sources, honoring <clear/>.
func (n *xmlNode) packageSources() []types.PackageSource {
	section := n.child("packageSources")
	if section == nil {
		return nil
	}
	var sources []types.PackageSource
	for _, entry := range section.Nodes {
		switch entry.XMLName.Local {
		case "clear":
			sources = nil
		case "add":
			sources = append(sources, types.PackageSource{
				Name: entry.attr("key"),
				URI:  entry.attr("value"),
			})
		}
	}
	return sources
}

// applyCredentials writes credentials for every source that matches an
// internal prefix (when config credentials are enabled) or an external
// endpoint. It returns the number of sources that received credentials.
func (n *xmlNode) applyCredentials(ctx context.Context, auth types.AuthenticationDescriptor) int {
	sources := n.packageSources()
	if len(sources) == 0 {
		return 0
	}
	written := 0
	for _, source := range sources {
		username, password, ok := credentialsFor(source, auth)
		if !ok {
			continue
		}
		n.setCredential(source.Name, username, password)
		log.Ctx(ctx).Debug().Str("source", source.Name).Msg("credentials set for source")
		written++
	}
	return written
}

func credentialsFor(source types.PackageSource, auth types.AuthenticationDescriptor) (string, string, bool) {
	if auth.Internal.UseCredentialConfig && auth.Internal.AccessToken != "" {
		for _, prefix := range auth.Internal.URIPrefixes {
			if feedURIMatches(source.URI, prefix) {
				return internalFeedUsername, auth.Internal.AccessToken, true
			}
		}
	}
	for _, external := range auth.External {
		if feedURIMatches(source.URI, external.EndpointURI) {
			username := external.Username
			if username == "" {
				username = internalFeedUsername
			}
			return username, external.Secret, true
		}
	}
	return "", "", false
}

// feedURIMatches reports whether source lives under prefix: same scheme and
// host, and a path that extends the prefix path at a segment boundary.
func feedURIMatches(source string, prefix string) bool {
	sourceURL, err := url.Parse(strings.TrimSpace(source))
	if err != nil || sourceURL.Host == "" {
		return false
	}
	prefixURL, err := url.Parse(strings.TrimSpace(prefix))
	if err != nil || prefixURL.Host == "" {
		return false
	}
	if !strings.EqualFold(sourceURL.Scheme, prefixURL.Scheme) || !strings.EqualFold(sourceURL.Host, prefixURL.Host) {
		return false
	}
	prefixPath := strings.ToLower(prefixURL.EscapedPath())
	sourcePath := strings.ToLower(sourceURL.EscapedPath())
	if prefixPath == "" || prefixPath == "/" {
		return true
	}
	if !strings.HasPrefix(sourcePath, prefixPath) {
		return false
	}
	if strings.HasSuffix(prefixPath, "/") || len(sourcePath) == len(prefixPath) {
		return true
	}
	return sourcePath[len(prefixPath)] == '/'
}

// configPathKeys are the <config> settings nuget resolves against the
// directory of the config file.
var configPathKeys = map[string]bool{
	"repositorypath":       true,
	"globalpackagesfolder": true,
}

// resolveRelativePaths roots local source paths and folder settings at dir.
func (n *xmlNode) resolveRelativePaths(dir string) {
	for _, section := range []string{"packageSources", "config", "fallbackPackageFolders"} {
		node := n.child(section)
		if node == nil {
			continue
		}
		for i := range node.Nodes {
			entry := &node.Nodes[i]
			if entry.XMLName.Local != "add" {
				continue
			}
			if section == "config" && !configPathKeys[strings.ToLower(entry.attr("key"))] {
				continue
			}
			value := entry.attr("value")
			if !isRelativeLocalPath(value) {
				continue
			}
			entry.setAttr("value", filepath.Join(dir, filepath.FromSlash(value)))
		}
	}
}

func isRelativeLocalPath(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || strings.Contains(value, "://") {
		return false
	}
	if strings.HasPrefix(value, "%") || strings.HasPrefix(value, "$") || strings.HasPrefix(value, `\\`) {
		return false
	}
	return !filepath.IsAbs(value)
}

func (n *xmlNode) setAttr(name string, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name.Local == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

func (n *xmlNode) setCredential(sourceName string, username string, password string) {
	section := n.ensureChild("packageSourceCredentials")
	element := xmlNode{
		XMLName: xml.Name{Local: encodeCredentialName(sourceName)},
		Nodes: []xmlNode{
			newKeyValueNode("Username", username),
			newKeyValueNode("ClearTextPassword", password),
		},
	}
	for i := range section.Nodes {
		if section.Nodes[i].XMLName.Local == element.XMLName.Local {
			section.Nodes[i] = element
			return
		}
	}
	section.Nodes = append(section.Nodes, element)
}

// encodeCredentialName turns a source name into an XML element name the way
// nuget expects, escaping invalid characters as _xHHHH_.
func encodeCredentialName(name string) string {
	var builder strings.Builder
	for i, r := range name {
		valid := r == '_' || unicode.IsLetter(r)
		if i > 0 {
			valid = valid || r == '-' || r == '.' || unicode.IsDigit(r)
		}
		if valid {
			builder.WriteRune(r)
			continue
		}
		fmt.Fprintf(&builder, "_x%04X_", r)
	}
	return builder.String()
}

var _ ports.NuGetConfigPort = NuGetConfigAdapter{}
