package roadnet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/coins-dawn/prometheus/internal/geo"
)

// Graph is the immutable, process-wide road network: adjacency lists plus
// the mesh index used for nearest-node lookup. Grounded on
// original_source/prometheus/car_searcher.py's load_graph/create_mesh_dict,
// following the teacher's own CSV column-map parsing idiom
// (internal/gtfs/parser.go) rather than a database load.
type Graph struct {
	nodes     map[int64]RoadNode
	outEdges  map[int64][]roadEdge
	meshIndex map[int64][]int64
}

// LoadGraph reads the node CSV ("id,lat,lon,mesh") and edge CSV
// ("from,to,distance") and builds the immutable Graph.
func LoadGraph(nodeCSVPath, edgeCSVPath string) (*Graph, error) {
	nodes, err := loadNodes(nodeCSVPath)
	if err != nil {
		return nil, fmt.Errorf("roadnet: load nodes: %w", err)
	}

	outEdges, err := loadEdges(edgeCSVPath)
	if err != nil {
		return nil, fmt.Errorf("roadnet: load edges: %w", err)
	}

	meshIndex := make(map[int64][]int64)
	for id, n := range nodes {
		meshIndex[n.MeshCode] = append(meshIndex[n.MeshCode], id)
	}

	return &Graph{nodes: nodes, outEdges: outEdges, meshIndex: meshIndex}, nil
}

func loadNodes(path string) (map[int64]RoadNode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	col := columnIndex(header)

	nodes := make(map[int64]RoadNode)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		id, err := strconv.ParseInt(row[col["id"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("roadnet: bad node id %q: %w", row[col["id"]], err)
		}
		lat, err := strconv.ParseFloat(row[col["lat"]], 64)
		if err != nil {
			return nil, fmt.Errorf("roadnet: bad lat %q: %w", row[col["lat"]], err)
		}
		lon, err := strconv.ParseFloat(row[col["lon"]], 64)
		if err != nil {
			return nil, fmt.Errorf("roadnet: bad lon %q: %w", row[col["lon"]], err)
		}

		coord := geo.Coord{Lat: lat, Lon: lon}
		mesh := geo.LatLonToMesh(coord)
		if meshCol, ok := col["mesh"]; ok {
			if m, err := strconv.ParseInt(row[meshCol], 10, 64); err == nil {
				mesh = m
			}
		}

		nodes[id] = RoadNode{ID: id, Coord: coord, MeshCode: mesh}
	}
	return nodes, nil
}

func loadEdges(path string) (map[int64][]roadEdge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	col := columnIndex(header)

	out := make(map[int64][]roadEdge)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		from, err := strconv.ParseInt(row[col["from"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("roadnet: bad edge from %q: %w", row[col["from"]], err)
		}
		to, err := strconv.ParseInt(row[col["to"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("roadnet: bad edge to %q: %w", row[col["to"]], err)
		}
		dist, err := strconv.ParseFloat(row[col["distance"]], 64)
		if err != nil {
			return nil, fmt.Errorf("roadnet: bad edge distance %q: %w", row[col["distance"]], err)
		}

		out[from] = append(out[from], roadEdge{To: to, Distance: dist})
	}
	return out, nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}

// Node returns the road node for an id, and whether it exists.
func (g *Graph) Node(id int64) (RoadNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}
