package topology

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/GNS-S/ripv2-simulation/routing"
)

const routersHeader = "[ROUTERS]"

// Parse reads a topology description. The format is a `[ROUTERS]` header
// followed by per-router blocks of exactly three lines (`id:`, `inputs:`,
// `outputs:`), separated by one blank line. Outputs are
// `{routerId}:{port}:{metric}` triples.
func Parse(r io.Reader) (*Topology, error) {
	p := &parser{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.lineNo++
		if err := p.feed(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	topo, err := p.finish()
	if err != nil {
		return nil, err
	}

	if err := validate(topo); err != nil {
		return nil, err
	}

	return topo, nil
}

// Load parses the topology description stored in a file.
func Load(path string) (*Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// MustParse parses a topology from a string and panics on error.
func MustParse(text string) *Topology {
	topo, err := Parse(strings.NewReader(text))
	if err != nil {
		panic(err)
	}
	return topo
}

type parser struct {
	lineNo     int
	seenHeader bool
	block      []string
	blockStart int
	routers    []RouterSpec
}

func (p *parser) feed(line string) error {
	trimmed := strings.TrimSpace(line)

	if !p.seenHeader {
		if trimmed == "" {
			return nil
		}
		if trimmed != routersHeader {
			return configErrf(p.lineNo, "expected %q header, got %q",
				routersHeader, trimmed)
		}
		p.seenHeader = true
		return nil
	}

	if trimmed == "" {
		return p.endBlock()
	}

	if len(p.block) == 0 {
		p.blockStart = p.lineNo
	}
	p.block = append(p.block, trimmed)

	return nil
}

func (p *parser) finish() (*Topology, error) {
	if !p.seenHeader {
		return nil, configErrf(0, "missing %q header", routersHeader)
	}

	if err := p.endBlock(); err != nil {
		return nil, err
	}

	if len(p.routers) == 0 {
		return nil, configErrf(0, "no routers defined")
	}

	return &Topology{Routers: p.routers}, nil
}

func (p *parser) endBlock() error {
	if len(p.block) == 0 {
		return nil
	}

	if len(p.block) != 3 {
		return configErrf(p.blockStart,
			"router block must have exactly 3 lines, got %d", len(p.block))
	}

	spec, err := p.parseBlock()
	if err != nil {
		return err
	}

	p.routers = append(p.routers, spec)
	p.block = nil

	return nil
}

func (p *parser) parseBlock() (RouterSpec, error) {
	spec := RouterSpec{}

	idValue, err := fieldValue(p.block[0], "id", p.blockStart)
	if err != nil {
		return spec, err
	}

	id, err := strconv.Atoi(idValue)
	if err != nil {
		return spec, configErrf(p.blockStart, "invalid router id %q", idValue)
	}
	spec.ID = routing.RouterID(id)

	inputsValue, err := fieldValue(p.block[1], "inputs", p.blockStart+1)
	if err != nil {
		return spec, err
	}

	spec.Inputs, err = parsePortList(inputsValue, p.blockStart+1)
	if err != nil {
		return spec, err
	}

	outputsValue, err := fieldValue(p.block[2], "outputs", p.blockStart+2)
	if err != nil {
		return spec, err
	}

	spec.Links, err = parseLinkList(outputsValue, p.blockStart+2)
	if err != nil {
		return spec, err
	}

	return spec, nil
}

func fieldValue(line, field string, lineNo int) (string, error) {
	prefix := field + ":"
	if !strings.HasPrefix(line, prefix) {
		return "", configErrf(lineNo, "expected %q field, got %q", field, line)
	}
	return strings.TrimSpace(strings.TrimPrefix(line, prefix)), nil
}

func parsePortList(value string, lineNo int) ([]routing.PortID, error) {
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	ports := make([]routing.PortID, 0, len(parts))

	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, configErrf(lineNo, "invalid port %q", part)
		}
		ports = append(ports, routing.PortID(n))
	}

	return ports, nil
}

func parseLinkList(value string, lineNo int) ([]routing.Link, error) {
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	links := make([]routing.Link, 0, len(parts))

	for _, part := range parts {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			return nil, configErrf(lineNo,
				"output %q is not an {id}:{port}:{metric} triple", part)
		}

		dest, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, configErrf(lineNo, "invalid output router id %q",
				fields[0])
		}

		port, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, configErrf(lineNo, "invalid output port %q", fields[1])
		}

		metric, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, configErrf(lineNo, "invalid output metric %q",
				fields[2])
		}

		links = append(links, routing.Link{
			Dest:     routing.RouterID(dest),
			DestPort: routing.PortID(port),
			Metric:   metric,
		})
	}

	return links, nil
}

func validate(topo *Topology) error {
	seenIDs := make(map[routing.RouterID]bool)
	portOwner := make(map[routing.PortID]routing.RouterID)

	for _, spec := range topo.Routers {
		if spec.ID < 0 || spec.ID >= routing.MaxRouters {
			return configErrf(0, "router id %d outside [0, %d]",
				spec.ID, routing.MaxRouters-1)
		}

		if seenIDs[spec.ID] {
			return configErrf(0, "duplicate router id %d", spec.ID)
		}
		seenIDs[spec.ID] = true

		for _, port := range spec.Inputs {
			if port < routing.MinPort || port > routing.MaxPort {
				return configErrf(0, "router %d: input port %d outside "+
					"[%d, %d]", spec.ID, port, routing.MinPort,
					routing.MaxPort)
			}

			if owner, taken := portOwner[port]; taken {
				return configErrf(0,
					"port %d used by both router %d and router %d",
					port, owner, spec.ID)
			}
			portOwner[port] = spec.ID
		}
	}

	for _, spec := range topo.Routers {
		for _, link := range spec.Links {
			if err := validateLink(topo, spec, link); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateLink(topo *Topology, spec RouterSpec, link routing.Link) error {
	if link.Dest == spec.ID {
		return configErrf(0, "router %d links to itself", spec.ID)
	}

	dest := topo.Router(link.Dest)
	if dest == nil {
		return configErrf(0, "router %d links to nonexistent router %d",
			spec.ID, link.Dest)
	}

	if !dest.HasInputPort(link.DestPort) {
		return configErrf(0,
			"router %d links to router %d port %d, which is not one of its "+
				"input ports", spec.ID, link.Dest, link.DestPort)
	}

	if link.Metric < 1 || link.Metric >= routing.DefaultInfinity {
		return configErrf(0, "router %d: link metric %d outside [1, %d]",
			spec.ID, link.Metric, routing.DefaultInfinity-1)
	}

	return nil
}
